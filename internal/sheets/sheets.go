// Package sheets talks to the Apps Script endpoint fronting the assessment
// spreadsheet. The sheet is the system of record for test results and is
// keyed by free-form candidate names, which is why cross-system resolution
// exists at all.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

// TestRecord is one spreadsheet row. The column headers are fixed by the
// sheet, Vietnamese names included.
type TestRecord struct {
	CandidateID   string `json:"candidate_id"`
	CandidateName string `json:"Tên ứng viên"`
	Position      string `json:"Công việc ứng tuyển"`
	TestName      string `json:"Tên bài test"`
	Score         string `json:"Score"`
	Time          string `json:"Time"`
	Link          string `json:"Link"`
	Content       string `json:"test content"`
}

type Client struct {
	// URL of the deployed script. Empty means the integration is not
	// configured and every read returns no records.
	URL        string
	HTTPClient *http.Client
	logger     *zap.Logger
}

func New(url string, logger *zap.Logger) *Client {
	return &Client{
		URL:        url,
		HTTPClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// Configured reports whether the sheet integration is available.
func (c *Client) Configured() bool {
	return c.URL != ""
}

type readRequest struct {
	Action  string            `json:"action"`
	Filters map[string]string `json:"filters,omitempty"`
}

type readResponse struct {
	Success bool              `json:"success"`
	Data    []json.RawMessage `json:"data"`
}

// ReadAll retrieves every test record from the sheet.
func (c *Client) ReadAll(ctx context.Context) ([]*TestRecord, error) {
	return c.read(ctx, nil)
}

// ReadByCandidate retrieves the test records filed under one upstream
// candidate id.
func (c *Client) ReadByCandidate(ctx context.Context, candidateID string) ([]*TestRecord, error) {
	return c.read(ctx, map[string]string{"candidate_id": candidateID})
}

func (c *Client) read(ctx context.Context, filters map[string]string) ([]*TestRecord, error) {
	if !c.Configured() {
		return nil, nil
	}

	payload, err := json.Marshal(readRequest{Action: "read_data", Filters: filters})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting sheet data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("requesting sheet data: bad status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var decoded readResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decoding sheet response: %w", err)
	}

	if !decoded.Success {
		c.logger.Debug("sheet script reported no data", zap.Int("rows", len(decoded.Data)))
		return nil, nil
	}

	records := make([]*TestRecord, 0, len(decoded.Data))
	for _, raw := range decoded.Data {
		var record TestRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			c.logger.Debug("skipping malformed sheet row", zap.Error(err))
			continue
		}
		records = append(records, &record)
	}

	return records, nil
}
