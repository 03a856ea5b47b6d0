package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// LivenessResult is the anti-spoofing verdict for a submitted frame.
type LivenessResult struct {
	Live  bool
	Score float64
}

// LivenessClient calls the liveness detection microservice.
type LivenessClient struct {
	BaseURL string
	HTTP    *http.Client
	Skip    bool
}

// NewLiveness creates a liveness client; skip behaves like FaceClient.Skip.
func NewLiveness(baseURL string, skip bool) *LivenessClient {
	return &LivenessClient{
		BaseURL: baseURL,
		Skip:    skip,
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Check asks the liveness service whether the frame came from a live subject.
func (c *LivenessClient) Check(ctx context.Context, imageURL string) (LivenessResult, error) {
	if c.Skip {
		return LivenessResult{Live: true, Score: 0.9}, nil
	}
	if imageURL == "" {
		return LivenessResult{}, fmt.Errorf("image url required")
	}

	body, _ := json.Marshal(map[string]string{"image_url": imageURL})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/liveness", bytes.NewReader(body))
	if err != nil {
		return LivenessResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return LivenessResult{}, fmt.Errorf("liveness service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return LivenessResult{}, fmt.Errorf("liveness service error %s: %s", resp.Status, string(bodyBytes))
	}

	var out struct {
		IsLive bool    `json:"is_live"`
		Score  float64 `json:"confidence"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return LivenessResult{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return LivenessResult{Live: out.IsLive, Score: out.Score}, nil
}
