package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.replicate.com"

type Options struct {
	APIToken     string
	BaseURL      string
	HTTPClient   *http.Client
	Logger       *slog.Logger
	PollInterval time.Duration
}

// Client talks to the Replicate predictions API. A prediction is created
// with a blocking "Prefer: wait" request; if the server hands back a still
// running prediction anyway, the client polls it to a terminal status.
type Client struct {
	apiToken     string
	baseURL      string
	httpClient   *http.Client
	logger       *slog.Logger
	pollInterval time.Duration
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		apiToken:     opts.APIToken,
		baseURL:      baseURL,
		httpClient:   opts.HTTPClient,
		logger:       logger,
		pollInterval: pollInterval,
	}
}

// Run creates a prediction for "owner/name" with the given input and blocks
// until it reaches a terminal status, returning the output URLs.
func (c *Client) Run(ctx context.Context, model string, input map[string]any) ([]string, error) {
	if c.httpClient == nil {
		return nil, errors.New("http client is nil")
	}
	if !strings.Contains(model, "/") {
		return nil, fmt.Errorf("invalid model ref %q, expected owner/name", model)
	}

	pred, err := c.createPrediction(ctx, model, input)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("prediction created", "id", pred.ID, "status", pred.Status)

	for !pred.Status.Terminal() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		pred, err = c.getPrediction(ctx, pred.ID)
		if err != nil {
			return nil, err
		}
	}

	switch pred.Status {
	case StatusSucceeded:
		return decodeOutput(pred.Output), nil
	case StatusCanceled:
		return nil, fmt.Errorf("prediction %s was canceled", pred.ID)
	default:
		message := strings.TrimSpace(pred.Error)
		if message == "" {
			message = "no error detail"
		}
		return nil, fmt.Errorf("prediction %s failed: %s", pred.ID, message)
	}
}

func (c *Client) createPrediction(ctx context.Context, model string, input map[string]any) (Prediction, error) {
	body, err := json.Marshal(struct {
		Input map[string]any `json:"input"`
	}{Input: input})
	if err != nil {
		return Prediction{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/models/%s/predictions", c.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Prediction{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("Authorization", "Token "+c.apiToken)
	httpReq.Header.Set("Prefer", "wait")

	return c.doPrediction(httpReq)
}

func (c *Client) getPrediction(ctx context.Context, id string) (Prediction, error) {
	url := fmt.Sprintf("%s/v1/predictions/%s", c.baseURL, id)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Prediction{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Token "+c.apiToken)

	return c.doPrediction(httpReq)
}

func (c *Client) doPrediction(httpReq *http.Request) (Prediction, error) {
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Prediction{}, fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Prediction{}, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return Prediction{}, fmt.Errorf("replicate API %s: %s", httpResp.Status, strings.TrimSpace(string(rawBody)))
	}

	var pred Prediction
	if err := json.Unmarshal(rawBody, &pred); err != nil {
		return Prediction{}, fmt.Errorf("decode response: %w", err)
	}

	return pred, nil
}

// decodeOutput tolerates the two output shapes seen in the wild: a single
// URI string and a list of URI strings.
func decodeOutput(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return nil
		}
		return []string{single}
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		out := many[:0]
		for _, u := range many {
			if u != "" {
				out = append(out, u)
			}
		}
		return out
	}

	return nil
}
