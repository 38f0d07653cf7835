package docintel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// APIError is a failed call to the document service. StatusCode is the HTTP
// status when the failure happened at the transport level, or 0 when the
// remote analyze operation itself reported failure.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("document service: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("document service: %s", e.Message)
}

// Config for the Document Intelligence client.
type Config struct {
	Endpoint     string        // e.g. https://<resource>.cognitiveservices.azure.com
	APIKey       string        // if empty, falls back to env DOCINTEL_API_KEY
	APIVersion   string        // default 2023-07-31
	PollInterval time.Duration // delay between status polls
	Timeout      time.Duration // overall analyze deadline, submit to completion
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("DOCINTEL_API_KEY")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2023-07-31"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
		log:  logger,
	}
}

// Analyze submits a binary document to the given model and blocks, polling at
// the configured interval, until the remote operation completes. The caller
// gets the analyze result even when zero documents were recognized.
func (c *Client) Analyze(ctx context.Context, modelID string, document []byte) (*AnalyzeResult, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("docintel.analyze.start",
		"req_id", rid, "model", modelID, "bytes", len(document))

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	opURL, err := c.submit(ctx, modelID, document)
	if err != nil {
		c.log.Error("docintel.analyze.submit_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	res, err := c.pollUntilDone(ctx, opURL)
	if err != nil {
		c.log.Error("docintel.analyze.poll_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	c.log.Info("docintel.analyze.ok",
		"req_id", rid,
		"documents", len(res.Documents),
		"pages", len(res.Pages),
		"elapsed_ms", time.Since(start).Milliseconds())
	return res, nil
}

func (c *Client) submit(ctx context.Context, modelID string, document []byte) (string, error) {
	url := fmt.Sprintf("%s/formrecognizer/documentModels/%s:analyze?api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), modelID, c.cfg.APIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(document))
	if err != nil {
		return "", fmt.Errorf("build analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit analyze: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusAccepted {
		return "", &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "missing Operation-Location header"}
	}
	return opURL, nil
}

func (c *Client) pollUntilDone(ctx context.Context, opURL string) (*AnalyzeResult, error) {
	for {
		op, err := c.getOperation(ctx, opURL)
		if err != nil {
			return nil, err
		}

		switch op.Status {
		case "succeeded":
			if op.AnalyzeResult == nil {
				return nil, &APIError{Message: "operation succeeded without a result"}
			}
			return op.AnalyzeResult, nil
		case "failed":
			msg := "analyze operation failed"
			if op.Error != nil {
				msg = fmt.Sprintf("%s: %s", op.Error.Code, op.Error.Message)
			}
			return nil, &APIError{Message: msg}
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for analyze operation: %w", ctx.Err())
		case <-time.After(c.cfg.PollInterval):
		}
	}
}

func (c *Client) getOperation(ctx context.Context, opURL string) (*analyzeOperation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build poll request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll operation: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	var op analyzeOperation
	if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
		return nil, fmt.Errorf("decode operation status: %w", err)
	}
	return &op, nil
}

// readErrorMessage pulls the service error message out of an error body,
// falling back to the raw payload.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return "request failed"
	}
	var body struct {
		Error serviceError `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return strings.TrimSpace(string(raw))
}
