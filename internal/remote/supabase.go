// Package remote implements the chart value store on top of a hosted
// Supabase (PostgREST) table.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jgoulah/callcharts/internal/config"
	"github.com/jgoulah/callcharts/pkg/models"
)

// codeNoRows is PostgREST's answer to a single-object request matching zero rows
const codeNoRows = "PGRST116"

// APIError is an error response from the REST endpoint
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP error: status %d", e.StatusCode)
	}
	return e.Message
}

// Store reads and upserts rows of the user_chart_values table
type Store struct {
	baseURL string
	apiKey  string
	table   string
	client  *http.Client
	logger  *zap.Logger
}

// New creates a store from the supabase config section
func New(cfg config.SupabaseConfig, logger *zap.Logger) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("Supabase URL is required (set supabase.url or SUPABASE_URL)")
	}
	if cfg.AnonKey == "" {
		return nil, fmt.Errorf("Supabase anon key is required (set supabase.anon_key or SUPABASE_ANON_KEY)")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	table := cfg.Table
	if table == "" {
		table = "user_chart_values"
	}

	return &Store{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.AnonKey,
		table:   table,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}, nil
}

type row struct {
	Email   string        `json:"email,omitempty"`
	ChartID string        `json:"chart_id,omitempty"`
	Values  models.Series `json:"values"`
}

func (s *Store) endpoint(q url.Values) string {
	return fmt.Sprintf("%s/rest/v1/%s?%s", s.baseURL, s.table, q.Encode())
}

func (s *Store) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	return req, nil
}

// Get fetches the row for (email, chart). A zero-row answer is reported as a
// nil entry; every other failure is an error.
func (s *Store) Get(ctx context.Context, email string, chart models.ChartID) (*models.SavedEntry, error) {
	q := url.Values{}
	q.Set("select", "values")
	q.Set("email", "eq."+email)
	q.Set("chart_id", "eq."+string(chart))

	req, err := s.newRequest(ctx, http.MethodGet, s.endpoint(q), nil)
	if err != nil {
		return nil, err
	}
	// Single-object response, as .single() does
	req.Header.Set("Accept", "application/vnd.pgrst.object+json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := decodeAPIError(resp.StatusCode, respBody)
		if apiErr.Code == codeNoRows {
			s.logger.Debug("No row for key", zap.String("email", email), zap.String("chart", chart.String()))
			return nil, nil
		}
		return nil, apiErr
	}

	var r row
	if err := json.Unmarshal(respBody, &r); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return &models.SavedEntry{
		Email:   email,
		ChartID: chart,
		Values:  r.Values,
	}, nil
}

// Upsert writes the row, replacing any row with the same (email, chart_id)
func (s *Store) Upsert(ctx context.Context, entry *models.SavedEntry) error {
	q := url.Values{}
	q.Set("on_conflict", "email,chart_id")

	body, err := json.Marshal([]row{{
		Email:   entry.Email,
		ChartID: string(entry.ChartID),
		Values:  entry.Values,
	}})
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodPost, s.endpoint(q), bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "resolution=merge-duplicates,return=minimal")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return decodeAPIError(resp.StatusCode, respBody)
	}

	s.logger.Debug("Upserted row", zap.String("email", entry.Email), zap.String("chart", entry.ChartID.String()), zap.Int("status", resp.StatusCode))
	return nil
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("HTTP error: status %d, response: %s", status, strings.TrimSpace(string(body)))
	}
	return apiErr
}
