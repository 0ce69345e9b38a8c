package handler

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/plenary-api/internal/middleware"
	"github.com/noah-isme/plenary-api/internal/models"
	"github.com/noah-isme/plenary-api/internal/service"
	"github.com/noah-isme/plenary-api/pkg/response"
)

// StateHandler exposes the projected voting state.
type StateHandler struct {
	state *service.StateService
}

// NewStateHandler creates a new handler.
func NewStateHandler(state *service.StateService) *StateHandler {
	return &StateHandler{state: state}
}

// Get godoc
// @Summary Current voting state
// @Description Returns the voting screen state for the caller. Session claims, when present, personalise the has_voted and eligible flags.
// @Tags State
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /state [get]
func (h *StateHandler) Get(c *gin.Context) {
	state := h.state.Current()

	out := models.PublicState{
		Status:        state.Status,
		Phase:         state.Phase,
		StartedAt:     state.StartedAt,
		EndedAt:       state.EndedAt,
		ProposalTitle: models.DefaultProposalTitle,
		ProposalBody:  models.DefaultProposalBody,
		ProposalAxis:  models.DefaultAxisText,
	}

	if ptr := state.ActivePointer; ptr != nil {
		out.ProposalID = ptr.ProposalID
		out.ProposalTitle = ptr.Title
		out.ProposalAxis = ptr.Axis
		out.ProposalBody = ptr.BodyText
		// The registered record wins when it still exists; the pointer's
		// cached copy covers deletion after selection.
		if p := state.ActiveProposal; p != nil {
			out.ProposalTitle = p.Title
			out.ProposalAxis = p.Axis
			out.ProposalBody = p.Description
		}

		out.TotalVotes = len(state.VotesForProposal(ptr.ProposalID))
		if state.Status == models.StatusClosed {
			if p := state.ActiveProposal; p != nil && p.Status == models.ProposalVoted {
				out.Tally = &models.Tally{
					Yes:     p.YesVotes,
					No:      p.NoVotes,
					Abstain: p.AbstainVotes,
					Total:   p.TotalVotes,
				}
			} else {
				t := models.CountVotes(state.VotesForProposal(ptr.ProposalID))
				out.Tally = &t
			}
		}

		if claimsValue, ok := c.Get(middleware.ContextSessionKey); ok {
			claims := claimsValue.(*models.SessionClaims)
			if claims.Role == models.RoleVoter {
				out.HasVoted = state.HasVoted(claims.VoterID(), ptr.ProposalID)
				out.Eligible = service.Eligible(state.Phase, claims.Axis, out.ProposalAxis)
			}
		}
	}

	response.JSON(c, http.StatusOK, out, nil)
}

// Results godoc
// @Summary Voted proposal outcomes
// @Description Returns every proposal with a recorded result, sorted by axis then title
// @Tags State
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /state/results [get]
func (h *StateHandler) Results(c *gin.Context) {
	state := h.state.Current()

	results := make([]models.ProposalResultView, 0)
	for i := range state.Proposals {
		p := &state.Proposals[i]
		if p.Status != models.ProposalVoted || p.Result == nil {
			continue
		}
		results = append(results, models.ProposalResultView{
			ProposalID: p.ID,
			Title:      p.Title,
			Axis:       p.Axis,
			Result:     *p.Result,
			Tally: models.Tally{
				Yes:     p.YesVotes,
				No:      p.NoVotes,
				Abstain: p.AbstainVotes,
				Total:   p.TotalVotes,
			},
			VotedAt:             p.VotedAt,
			DurationSeconds:     p.DurationSeconds,
			Promoted:            p.Promoted,
			ClassificationLabel: p.ClassificationLabel,
			ClassificationColor: p.ClassificationColor,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if !strings.EqualFold(a.Axis, b.Axis) {
			return strings.ToLower(a.Axis) < strings.ToLower(b.Axis)
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})

	response.JSON(c, http.StatusOK, results, nil)
}
