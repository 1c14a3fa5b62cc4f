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

// ErrTabLookupInactive is returned when a tab lookup is attempted for a
// report date before the lookup API cutover.
var ErrTabLookupInactive = fmt.Errorf("raw-data tab lookup is not available for dates before the lookup cutover")

// TabResult is the lookup API's answer for one (department, date,
// category) key: whether a raw-data tab exists and where it lives.
type TabResult struct {
	Success      bool   `json:"success"`
	TabFound     bool   `json:"tab_found"`
	TabURL       string `json:"tab_url,omitempty"`
	WorksheetGID string `json:"worksheet_gid,omitempty"`
	Message      string `json:"message,omitempty"`
}

// UserMessage returns the text shown to the user when the lookup did
// not produce a usable tab. Non-success and tab-not-found must never be
// a silent no-op.
func (r TabResult) UserMessage() string {
	if r.Message != "" {
		return r.Message
	}
	if !r.Success {
		return "Raw data lookup failed"
	}
	if !r.TabFound {
		return "No raw data tab exists for this selection"
	}
	return ""
}

// TabLookup queries the lookup API. It refuses dates before the lookup
// cutover so callers cannot accidentally hit the endpoint for report
// dates it does not cover.
func (c *Client) TabLookup(ctx context.Context, department string, date time.Time, category string) (TabResult, error) {
	if !metrics.TabLookupActive(date) {
		return TabResult{}, ErrTabLookupInactive
	}

	q := url.Values{}
	q.Set("department", department)
	q.Set("date", date.Format(dateFormat))
	q.Set("category", category)

	endpoint := c.lookupURL + "/api/v1/tabs?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return TabResult{}, fmt.Errorf("building tab lookup request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TabResult{}, fmt.Errorf("tab lookup for %s: %w", department, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return TabResult{}, fmt.Errorf("tab lookup service returned %s", resp.Status)
	}

	var result TabResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return TabResult{}, fmt.Errorf("decoding tab lookup response: %w", err)
	}
	return result, nil
}

// SheetLink builds the deep link into the backing spreadsheet for a
// metric category. Used by the UI to open the raw data view.
func (c *Client) SheetLink(department string, date time.Time, category string) string {
	q := url.Values{}
	q.Set("department", department)
	q.Set("date", date.Format(dateFormat))
	q.Set("category", category)
	return c.baseURL + "/sheets/open?" + q.Encode()
}
