package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ballotworks/electoral-api/internal/config"
	"github.com/ballotworks/electoral-api/internal/logger"
)

// FaceMatchClient calls the external face-verification collaborator over
// HTTP. Callers treat any error as a rejection (the vote ledger fails
// closed); this client only reports what happened.
type FaceMatchClient struct {
	url    string
	client *http.Client
	log    *log.Logger
}

// NewFaceMatchClient creates a face-match client from configuration
func NewFaceMatchClient(cfg *config.Config) *FaceMatchClient {
	return &FaceMatchClient{
		url: cfg.FaceMatch.URL,
		client: &http.Client{
			Timeout: time.Duration(cfg.FaceMatch.TimeoutSeconds) * time.Second,
		},
		log: logger.Verification(),
	}
}

type faceMatchRequest struct {
	ReferenceImageKey string `json:"reference_image_key"`
	CapturedImage     string `json:"captured_image"`
}

type faceMatchResponse struct {
	Match bool   `json:"match"`
	Error string `json:"error,omitempty"`
}

// Match sends the stored reference image key and the freshly captured
// image to the collaborator and returns its verdict.
func (c *FaceMatchClient) Match(ctx context.Context, referenceImageKey, capturedImage string) (bool, error) {
	if referenceImageKey == "" {
		return false, fmt.Errorf("voter has no reference image on file")
	}
	if capturedImage == "" {
		return false, fmt.Errorf("captured image is required")
	}

	payload, err := json.Marshal(faceMatchRequest{
		ReferenceImageKey: referenceImageKey,
		CapturedImage:     capturedImage,
	})
	if err != nil {
		return false, fmt.Errorf("failed to encode face match request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("failed to build face match request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Error("face match request failed", "error", err)
		return false, fmt.Errorf("face match collaborator unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("face match collaborator returned status %d", resp.StatusCode)
	}

	var result faceMatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode face match response: %w", err)
	}

	if result.Error != "" {
		return false, fmt.Errorf("face match collaborator error: %s", result.Error)
	}

	c.log.Debug("face match completed", "match", result.Match)
	return result.Match, nil
}
