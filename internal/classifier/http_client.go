package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client calls the sign-inference service over HTTP. The service owns
// the model; we only ship frames and read back label+confidence.
type Client struct {
	endpoint string
	hc       *http.Client
}

type Options struct {
	// Endpoint is the full URL of the inference route,
	// e.g. http://inference:8500/classify.
	Endpoint string
	Timeout  time.Duration
}

func NewClient(opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("classifier client: empty endpoint")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}

	return &Client{
		endpoint: opts.Endpoint,
		hc:       &http.Client{Timeout: opts.Timeout},
	}, nil
}

type classifyRequest struct {
	ImageData string `json:"image_data"`
}

type classifyResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

func (c *Client) Classify(ctx context.Context, imageData string) (Result, error) {
	body, err := json.Marshal(classifyRequest{ImageData: imageData})
	if err != nil {
		return Result{}, fmt.Errorf("classifier: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("classifier: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("classifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("classifier: unexpected status %d", resp.StatusCode)
	}

	var cr classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return Result{}, fmt.Errorf("classifier: decode response: %w", err)
	}

	return Result{Label: cr.Label, Confidence: cr.Confidence}, nil
}
