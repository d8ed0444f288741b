// Package remote talks to the spreadsheet-backed sheet endpoint: reads a
// named collection with GET and posts row writes (including sentinel
// deletes) with POST.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/oskolki/internal/client/models"
	"github.com/dmitrijs2005/oskolki/internal/common"
)

// maxResponseBytes caps how much of a response body is read.
var maxResponseBytes int64 = 16 << 20

// Client is the contract the orchestrator depends on.
type Client interface {
	FetchCollection(ctx context.Context, sheet string) ([]models.Row, error)
	Append(ctx context.Context, sheet string, row models.Row) error
	Delete(ctx context.Context, sheet string, id string) error
}

// HTTPClient implements Client over the endpoint's JSON contract. It has
// no retry policy: a failed call waits for the caller's next attempt.
type HTTPClient struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	now        func() time.Time
}

func NewHTTPClient(endpoint string, timeout time.Duration, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{
		endpoint:   strings.TrimSpace(endpoint),
		timeout:    timeout,
		httpClient: httpClient,
		now:        time.Now,
	}
}

type readResponse struct {
	Success bool         `json:"success"`
	Data    []models.Row `json:"data"`
	Error   string       `json:"error"`
	Message string       `json:"message"`
}

type writeRequest struct {
	Sheet string `json:"sheet"`
	Data  any    `json:"data"`
}

func (c *HTTPClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// readURL appends the sheet name and a millisecond cache buster to the
// endpoint, keeping any query the endpoint already carries.
func (c *HTTPClient) readURL(sheet string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: endpoint %q: %v", common.ErrNetwork, c.endpoint, err)
	}
	q := u.Query()
	q.Set("sheet", sheet)
	q.Set("t", strconv.FormatInt(c.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchCollection reads every row of sheet. Transport failures and non-2xx
// statuses are ErrNetwork, malformed bodies ErrParse, and an explicit
// success=false is ErrRejected.
func (c *HTTPClient) FetchCollection(ctx context.Context, sheet string) ([]models.Row, error) {
	target, err := c.readURL(sheet)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create read request: %v", common.ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", common.ErrNetwork, sheet, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s body: %v", common.ErrNetwork, sheet, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: read %s: status %d", common.ErrNetwork, sheet, resp.StatusCode)
	}
	if int64(len(body)) > maxResponseBytes {
		return nil, fmt.Errorf("%w: read %s: response exceeds %d bytes", common.ErrParse, sheet, maxResponseBytes)
	}

	var parsed readResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", common.ErrParse, sheet, err)
	}
	if !parsed.Success {
		reason := parsed.Error
		if reason == "" {
			reason = parsed.Message
		}
		return nil, fmt.Errorf("%w: read %s: %s", common.ErrRejected, sheet, reason)
	}
	if parsed.Data == nil {
		return []models.Row{}, nil
	}
	return parsed.Data, nil
}

// Append posts a row. The endpoint upserts by the row's id, so updates are
// sent as the full row too. Only transport-level failures are reported;
// the response body is not interpreted.
func (c *HTTPClient) Append(ctx context.Context, sheet string, row models.Row) error {
	return c.post(ctx, writeRequest{Sheet: sheet, Data: row})
}

// Delete posts the sentinel ["DELETE", id]. Whether the endpoint honoured
// it is not checked.
func (c *HTTPClient) Delete(ctx context.Context, sheet string, id string) error {
	return c.post(ctx, writeRequest{Sheet: sheet, Data: []string{common.DeleteMarker, id}})
}

func (c *HTTPClient) post(ctx context.Context, payload writeRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encode %s write: %v", common.ErrParse, payload.Sheet, err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: create write request: %v", common.ErrNetwork, err)
	}
	// a "simple" content type: the endpoint parses the raw body itself
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", common.ErrNetwork, payload.Sheet, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 399 {
		return fmt.Errorf("%w: write %s: status %d", common.ErrNetwork, payload.Sheet, resp.StatusCode)
	}
	return nil
}
