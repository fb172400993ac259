// Package firms fetches near-real-time fire detections from the NASA FIRMS
// country API.
package firms

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// sensor is the near-real-time VIIRS product this service supports; the
	// 0.14 ha pixel constant in the transform is specific to it.
	sensor = "VIIRS_SNPP_NRT"
	// country is the FIRMS country code for the feed; filtering down to the
	// target region happens during transform.
	country = "CAN"
	// maxDays is the FIRMS API limit on historical depth.
	maxDays = 10
)

// Client pulls the FIRMS CSV feed. It implements pipeline.FeedFetcher.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a FIRMS client. baseURL allows tests to point at a stub
// server; pass the production URL from config otherwise.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// FetchDetections downloads and parses detections for the last daysBack days.
// daysBack is clamped to the API maximum. The whole response is read before
// any row is returned: a transport failure mid-body yields an error and no
// rows, never a partially parsed feed.
func (c *Client) FetchDetections(ctx context.Context, daysBack int) ([]map[string]string, error) {
	if c.apiKey == "" {
		return nil, errors.New("FIRMS API key is not set")
	}
	if daysBack < 1 {
		daysBack = 1
	}
	if daysBack > maxDays {
		daysBack = maxDays
	}

	// Path format: /{api_key}/{source}/{country}/{days}
	url := fmt.Sprintf("%s/%s/%s/%s/%d", c.baseURL, c.apiKey, sensor, country, daysBack)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch FIRMS feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("FIRMS API error: status %d: %s", resp.StatusCode, body)
	}

	rows, err := parseCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse FIRMS response: %w", err)
	}

	c.logger.Info("fetched FIRMS feed", "rows", len(rows), "days", daysBack)
	return rows, nil
}

// parseCSV reads the feed into one map per data row, keyed by header name.
// Rows with a column count that does not match the header are dropped; the
// feed occasionally emits ragged lines and one bad row must not sink the pull.
func parseCSV(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows []map[string]string
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(fields) != len(header) {
			continue
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			row[name] = fields[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
