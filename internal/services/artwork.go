// HTTP implementation of [ArtworkService]
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spotifire/spotifire/internal/shared"
)

// ArtworkClient implements [ArtworkService] against a generic image
// generation HTTP endpoint: POST {"prompt": ...} returns raw image bytes.
//
// Every failure path returns [shared.ErrArtworkFailed]; callers treat
// artwork as cosmetic and never fail a run on it.
type ArtworkClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewArtworkClient creates a new artwork client from configuration.
//
// An empty base URL yields a client whose Generate always reports
// [shared.ErrArtworkFailed], which the orchestrator degrades on gracefully.
func NewArtworkClient(cfg shared.ArtworkConfig) *ArtworkClient {
	return &ArtworkClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: http.DefaultClient,
	}
}

// Generate returns image bytes for a free-text prompt.
func (a *ArtworkClient) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if a.baseURL == "" {
		return nil, fmt.Errorf("%w: artwork service not configured", shared.ErrArtworkFailed)
	}

	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrArtworkFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrArtworkFailed, resp.StatusCode)
	}

	image, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrArtworkFailed, err)
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image response", shared.ErrArtworkFailed)
	}

	return image, nil
}
