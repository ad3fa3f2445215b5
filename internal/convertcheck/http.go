package convertcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"
)

// relativeTolerance bounds float differences between expected and actual values.
const relativeTolerance = 1e-9

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// response is the raw outcome of one request.
type response struct {
	Status int
	Body   []byte
}

// convert issues GET /convert for c, tagging it with requestID.
func (c *HTTPClient) convert(ctx context.Context, tc Case, requestID string) (response, error) {
	q := url.Values{}
	for k, v := range map[string]string{
		"amount":     tc.Amount,
		"from_unit":  tc.FromUnit,
		"to_unit":    tc.ToUnit,
		"ingredient": tc.Ingredient,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/convert?"+q.Encode(), http.NoBody)
	if err != nil {
		return response{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.client.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("failed to read response body: %w", err)
	}
	return response{Status: resp.StatusCode, Body: body}, nil
}

// health checks GET /healthz.
func (c *HTTPClient) health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: healthz returned %d", ErrServiceUnavailable, resp.StatusCode)
	}
	return nil
}

// verify compares a response with the case expectation and returns the
// mismatch, or "" when it matches.
func verify(exp Expectation, resp response) string {
	if resp.Status != exp.Status {
		return fmt.Sprintf("status %d, want %d (body %s)", resp.Status, exp.Status, resp.Body)
	}

	var body struct {
		ConvertedValue *float64 `json:"converted_value"`
		Unit           string   `json:"unit"`
		Error          string   `json:"error"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return fmt.Sprintf("invalid JSON body %q: %v", resp.Body, err)
	}

	if exp.Status != http.StatusOK {
		if body.Error != exp.Error {
			return fmt.Sprintf("error %q, want %q", body.Error, exp.Error)
		}
		return ""
	}

	if body.ConvertedValue == nil {
		return "converted_value missing"
	}
	if exp.ConvertedValue != nil && !closeEnough(*body.ConvertedValue, *exp.ConvertedValue) {
		return fmt.Sprintf("converted_value %v, want %v", *body.ConvertedValue, *exp.ConvertedValue)
	}
	if body.Unit != exp.Unit {
		return fmt.Sprintf("unit %q, want %q", body.Unit, exp.Unit)
	}
	return ""
}

func closeEnough(got, want float64) bool {
	if got == want {
		return true
	}
	return math.Abs(got-want) <= relativeTolerance*math.Max(math.Abs(got), math.Abs(want))
}
