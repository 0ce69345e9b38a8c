package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/plenary-api/internal/models"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
)

var sheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

const defaultFetchTimeout = 15 * time.Second

// RosterEntry is one participant row resolved from the external roster.
type RosterEntry struct {
	DisplayName    string
	Segment        string
	Representative string
	Axis           string
}

// RosterService fetches published spreadsheets exposed as CSV over HTTP.
// Both voter authentication and proposal import read through it.
type RosterService struct {
	client  *http.Client
	maxRows int
	logger  *zap.Logger
}

// NewRosterService constructs the service. The client's timeout bounds
// every fetch and must be finite; a nil client gets a 15s default, and a
// caller-supplied client with no timeout is capped the same way.
func NewRosterService(client *http.Client, maxRows int, logger *zap.Logger) *RosterService {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	if client.Timeout <= 0 {
		client.Timeout = defaultFetchTimeout
	}
	if maxRows <= 0 {
		maxRows = 5000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{client: client, maxRows: maxRows, logger: logger}
}

// FetchRows downloads the sheet and returns its data rows. Row 1 is always
// a header and is skipped.
func (s *RosterService) FetchRows(ctx context.Context, sheetURL, sheetName string) ([][]string, error) {
	id := extractSheetID(sheetURL)
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid spreadsheet URL")
	}

	endpoint := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s", id, url.QueryEscape(sheetName))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build sheet request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, "SHEET_FETCH_FAILED", http.StatusBadGateway, "spreadsheet fetch failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, appErrors.New("SHEET_FETCH_FAILED", http.StatusBadGateway,
			fmt.Sprintf("spreadsheet returned status %d; check that it is published", resp.StatusCode))
	}

	return s.parseRows(resp.Body)
}

// parseRows reads CSV rows up to the configured cap, dropping the header
// row. Quoted fields with embedded commas and doubled quotes are handled by
// the CSV reader.
func (s *RosterService) parseRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for len(rows) < s.maxRows {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, appErrors.Wrap(err, "SHEET_PARSE_FAILED", http.StatusBadGateway, "spreadsheet CSV is malformed")
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}

// Authenticate scans the roster for a row whose secret column matches.
// A nil entry with nil error means no match.
func (s *RosterService) Authenticate(ctx context.Context, cfg *models.RosterConfig, secret string) (*RosterEntry, error) {
	if cfg == nil {
		return nil, nil
	}

	rows, err := s.FetchRows(ctx, cfg.SheetURL, cfg.SheetName)
	if err != nil {
		return nil, err
	}

	secretIdx := columnIndex(cfg.Columns.Secret)
	nameIdx := columnIndex(cfg.Columns.Name)
	if secretIdx < 0 || nameIdx < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "roster column mapping is invalid")
	}

	for _, row := range rows {
		if cell(row, secretIdx) != secret {
			continue
		}
		entry := &RosterEntry{
			DisplayName:    cell(row, nameIdx),
			Segment:        cell(row, columnIndex(cfg.Columns.Segment)),
			Representative: cell(row, columnIndex(cfg.Columns.Representative)),
			Axis:           cell(row, columnIndex(cfg.Columns.Axis)),
		}
		if entry.DisplayName == "" {
			entry.DisplayName = "Authenticated participant"
		}
		return entry, nil
	}
	return nil, nil
}

func extractSheetID(sheetURL string) string {
	m := sheetIDPattern.FindStringSubmatch(sheetURL)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// columnIndex maps a single column letter to a zero-based index; -1 for
// anything unmapped.
func columnIndex(letter string) int {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return -1
	}
	return int(letter[0] - 'A')
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
