package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/plenary-api/api/swagger"
	"github.com/noah-isme/plenary-api/internal/handler"
	"github.com/noah-isme/plenary-api/internal/middleware"
	"github.com/noah-isme/plenary-api/internal/repository"
	"github.com/noah-isme/plenary-api/internal/service"
	"github.com/noah-isme/plenary-api/pkg/cache"
	"github.com/noah-isme/plenary-api/pkg/config"
	"github.com/noah-isme/plenary-api/pkg/database"
	"github.com/noah-isme/plenary-api/pkg/export"
	"github.com/noah-isme/plenary-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/plenary-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/plenary-api/pkg/middleware/requestid"
)

// @title Plenary Voting API
// @version 1.0.0
// @description Event-log backed voting service for plenary assemblies
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	if err := repository.EnsureSchema(ctx, db); err != nil {
		logr.Sugar().Fatalw("failed to ensure schema", "error", err)
	}

	// The change feed degrades to local-only fanout when redis is down:
	// a single instance still works, it just loses cross-instance pushes.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, running without cross-instance change feed", "error", err)
		redisClient = nil
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	repo := repository.NewRecordRepository(db)
	stateSvc := service.NewStateService(repo, metrics, logr)

	feed := service.NewChangeFeed(redisClient, cfg.Redis.Channel, logr)
	feed.Subscribe(stateSvc.Refresh)
	repo.SetNotifier(feed)
	go feed.Listen(ctx)
	defer feed.Close()

	stateSvc.Refresh(ctx)

	rosterSvc := service.NewRosterService(&http.Client{Timeout: cfg.Roster.FetchTimeout}, cfg.Roster.MaxRows, logr)
	authSvc := service.NewAuthService(cfg.Auth, stateSvc, rosterSvc, logr)
	voteSvc := service.NewVoteService(repo, stateSvc, validate, metrics, logr)
	lifecycleSvc := service.NewLifecycleService(repo, stateSvc, logr)
	classificationSvc := service.NewClassificationService(repo, stateSvc, validate, logr)
	proposalSvc := service.NewProposalService(repo, stateSvc, validate, logr)
	importSvc := service.NewImportService(repo, stateSvc, rosterSvc, logr)
	accountSvc := service.NewAccountService(repo, stateSvc, validate)
	configSvc := service.NewConfigService(repo, stateSvc, validate)
	reportSvc := service.NewReportService(stateSvc, export.NewCSVExporter(), export.NewPDFExporter())

	authHandler := handler.NewAuthHandler(authSvc)
	stateHandler := handler.NewStateHandler(stateSvc)
	voteHandler := handler.NewVoteHandler(voteSvc)
	votingHandler := handler.NewVotingHandler(lifecycleSvc)
	proposalHandler := handler.NewProposalHandler(proposalSvc, importSvc)
	accountHandler := handler.NewAccountHandler(accountSvc)
	configHandler := handler.NewConfigHandler(configSvc)
	classificationHandler := handler.NewClassificationHandler(classificationSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		pingCtx, pingCancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer pingCancel()
		if err := db.PingContext(pingCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.VoterLogin)
		api.POST("/auth/admin/login", authHandler.AdminLogin)
		api.GET("/auth/me", middleware.Session(authSvc), authHandler.Me)

		api.GET("/state", middleware.OptionalSession(authSvc), stateHandler.Get)
		api.GET("/state/results", stateHandler.Results)
		api.POST("/votes", middleware.Session(authSvc), voteHandler.Cast)

		admin := api.Group("", middleware.Session(authSvc))
		{
			voting := admin.Group("/voting", middleware.RequireAdmin(middleware.PermManageVoting))
			{
				voting.POST("/start", votingHandler.Start)
				voting.POST("/end", votingHandler.End)
				voting.POST("/new", votingHandler.New)
				voting.POST("/select", votingHandler.Select)
				voting.POST("/phase", votingHandler.ChangePhase)
				voting.POST("/proposals/:id/reset-votes", votingHandler.ResetProposalVotes)
			}

			proposals := admin.Group("/proposals", middleware.RequireAdmin(middleware.PermManageProposals))
			{
				proposals.GET("", proposalHandler.List)
				proposals.POST("", proposalHandler.Create)
				proposals.POST("/import", proposalHandler.Import)
				proposals.GET("/:id", proposalHandler.Get)
				proposals.PUT("/:id", proposalHandler.Update)
				proposals.DELETE("/:id", proposalHandler.Delete)
			}

			users := admin.Group("/users", middleware.RequireAdmin(middleware.PermManageUsers))
			{
				users.GET("/voters", accountHandler.ListVoters)
				users.POST("/voters", accountHandler.CreateVoter)
				users.PUT("/voters/:id", accountHandler.UpdateVoter)
				users.DELETE("/voters/:id", accountHandler.DeleteVoter)
				users.GET("/admins", accountHandler.ListAdmins)
				users.POST("/admins", accountHandler.CreateAdmin)
				users.DELETE("/admins/:id", accountHandler.DeleteAdmin)
			}

			cfgGroup := admin.Group("/config", middleware.RequireAdmin(middleware.PermManageConfig))
			{
				cfgGroup.GET("/roster", configHandler.GetRoster)
				cfgGroup.PUT("/roster", configHandler.SaveRoster)
				cfgGroup.GET("/proposal-import", configHandler.GetImport)
				cfgGroup.PUT("/proposal-import", configHandler.SaveImport)
			}

			classification := admin.Group("/classification", middleware.RequireAdmin(middleware.PermManageProposals))
			{
				classification.GET("/rules", classificationHandler.ListRules)
				classification.POST("/rules", classificationHandler.CreateRule)
				classification.PUT("/rules/:id", classificationHandler.UpdateRule)
				classification.DELETE("/rules/:id", classificationHandler.DeleteRule)
				classification.POST("/apply", classificationHandler.Apply)
			}

			reports := admin.Group("/reports", middleware.RequireAdmin())
			{
				reports.GET("/monitoring", reportHandler.Monitoring)
				reports.GET("/proposals.csv", reportHandler.ProposalsCSV)
				reports.GET("/proposals.pdf", reportHandler.ProposalsPDF)
				reports.GET("/votes.csv", reportHandler.VotesCSV)
				reports.GET("/votes.pdf", reportHandler.VotesPDF)
			}
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
