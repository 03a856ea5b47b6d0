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

// FaceResult is the outcome of a 1:1 face verification.
type FaceResult struct {
	Matched    bool
	Confidence float64
}

// FaceClient calls the face recognition microservice.
type FaceClient struct {
	BaseURL string
	HTTP    *http.Client
	Skip    bool
}

// NewFace creates a face client. With skip set the client returns a canned
// pass, which keeps dev environments working without the model running.
func NewFace(baseURL string, skip bool) *FaceClient {
	return &FaceClient{
		BaseURL: baseURL,
		Skip:    skip,
		HTTP: &http.Client{
			Timeout: 30 * time.Second, // face processing can take time
		},
	}
}

// Verify asks the face service whether the image matches the enrolled face
// for subjectID.
func (c *FaceClient) Verify(ctx context.Context, subjectID, imageURL string) (FaceResult, error) {
	if c.Skip {
		return FaceResult{Matched: true, Confidence: 0.95}, nil
	}
	if subjectID == "" || imageURL == "" {
		return FaceResult{}, fmt.Errorf("subject id and image url required")
	}

	body, _ := json.Marshal(map[string]string{
		"user_id":   subjectID,
		"image_url": imageURL,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/verify", bytes.NewReader(body))
	if err != nil {
		return FaceResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return FaceResult{}, fmt.Errorf("face service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return FaceResult{}, fmt.Errorf("face service error %s: %s", resp.Status, string(bodyBytes))
	}

	var out struct {
		Verified   bool    `json:"verified"`
		Similarity float64 `json:"similarity"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return FaceResult{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return FaceResult{Matched: out.Verified, Confidence: out.Similarity}, nil
}

// Health checks the face service.
func (c *FaceClient) Health(ctx context.Context) error {
	if c.Skip {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("face service unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("face service unhealthy: %s", resp.Status)
	}
	return nil
}
