// Package rest implements the persistence gateway as a client of an external
// results service. The service owns durable storage (and whatever locking it
// needs for concurrent human-score updates); this client only speaks its
// HTTP API:
//
//	GET    /tests
//	GET    /tests/{name}/questions
//	POST   /turns
//	GET    /turns?test={name}&from={rfc3339}&to={rfc3339}
//	PATCH  /turns/{id}/human-score
package rest

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

	"github.com/nZiben/ai-interviewer/internal/provider"
	"github.com/nZiben/ai-interviewer/internal/store"
)

// Gateway is an HTTP client for the results service.
type Gateway struct {
	baseURL string
	token   string
	client  *http.Client
}

// New creates a gateway for the service at baseURL. token, if non-empty, is
// sent as a bearer token on every request.
func New(baseURL, token string) *Gateway {
	return &Gateway{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client:  &http.Client{},
	}
}

// ListTests returns the names of all tests known to the results service.
func (g *Gateway) ListTests(ctx context.Context) ([]string, error) {
	var out struct {
		Tests []string `json:"tests"`
	}
	if err := g.get(ctx, "/tests", &out); err != nil {
		return nil, err
	}
	return out.Tests, nil
}

// ListQuestions returns the questions of a test in insertion order.
func (g *Gateway) ListQuestions(ctx context.Context, testName string) ([]string, error) {
	var out struct {
		Questions []string `json:"questions"`
	}
	path := "/tests/" + url.PathEscape(testName) + "/questions"
	if err := g.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

// SaveTurn posts one turn record. The service persists it atomically.
func (g *Gateway) SaveTurn(ctx context.Context, turn *store.Turn) error {
	body, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshalling turn: %w", err)
	}
	return g.send(ctx, http.MethodPost, "/turns", body)
}

// QueryTurns returns the turns recorded for a test within the window.
func (g *Gateway) QueryTurns(ctx context.Context, testName string, window store.TimeRange) ([]store.Turn, error) {
	q := make(url.Values)
	q.Set("test", testName)
	if !window.From.IsZero() {
		q.Set("from", window.From.Format(time.RFC3339))
	}
	if !window.To.IsZero() {
		q.Set("to", window.To.Format(time.RFC3339))
	}

	var out struct {
		Turns []store.Turn `json:"turns"`
	}
	if err := g.get(ctx, "/turns?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Turns, nil
}

// UpdateHumanScore sets the human score of a turn; the service applies the
// later of two racing writes.
func (g *Gateway) UpdateHumanScore(ctx context.Context, turnID string, score float64) error {
	if score < provider.ScoreMin || score > provider.ScoreMax {
		return fmt.Errorf("%w: human score %v outside [%v, %v]",
			store.ErrScoreOutOfRange, score, provider.ScoreMin, provider.ScoreMax)
	}
	body, err := json.Marshal(map[string]float64{"score": score})
	if err != nil {
		return fmt.Errorf("marshalling score: %w", err)
	}
	path := "/turns/" + url.PathEscape(turnID) + "/human-score"
	return g.send(ctx, http.MethodPatch, path, body)
}

func (g *Gateway) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	g.authorize(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("results service request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding results service response: %w", err)
	}
	return nil
}

func (g *Gateway) send(ctx context.Context, method, path string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	g.authorize(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("results service request: %w", err)
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

func (g *Gateway) authorize(req *http.Request) {
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		// The service distinguishes missing tests from missing turns by path;
		// map both onto the shared sentinels for errors.Is at call sites.
		if strings.Contains(resp.Request.URL.Path, "/turns/") {
			return store.ErrTurnNotFound
		}
		return store.ErrTestNotFound
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("results service: status %d: %s", resp.StatusCode, body)
	}
	return nil
}
