// Package sheets is the HTTP client for the spreadsheet scrape service:
// per-department snapshot fetches, raw-data tab lookups, and deep links
// into the backing spreadsheet.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/halcyon-ops/botboard/internal/metrics"
)

const dateFormat = "2006-01-02"

// Client talks to the scrape service. Safe for concurrent use.
type Client struct {
	baseURL    string
	lookupURL  string
	httpClient *http.Client
}

// New creates a Client for the given service base URLs. lookupURL may
// equal baseURL when the tab lookup API is served by the same host.
func New(baseURL, lookupURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		lookupURL:  lookupURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Snapshot fetches the raw metric mapping for one (department, date)
// pair, optionally scoped to a sub-department. The caller decides how a
// failure surfaces: the aggregate view substitutes an empty snapshot,
// the single-department view shows a blocking error with retry.
func (c *Client) Snapshot(ctx context.Context, department string, date time.Time, subDepartment string) (metrics.Snapshot, error) {
	q := url.Values{}
	q.Set("department", department)
	q.Set("date", date.Format(dateFormat))
	if subDepartment != "" {
		q.Set("sub_department", subDepartment)
	}

	endpoint := c.baseURL + "/api/v1/snapshot?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building snapshot request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching snapshot for %s: %w", department, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot service returned %s for %s", resp.Status, department)
	}

	var snap metrics.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot for %s: %w", department, err)
	}
	return snap, nil
}
