// Gemini API implementation of [Generator]
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spotifire/spotifire/internal/models"
	"github.com/spotifire/spotifire/internal/shared"
)

// generatorSystemPrompt pins the structured-output contract the resolver
// depends on: a JSON object with a "playlist" array of {artist, song} pairs.
const generatorSystemPrompt = `You are a pro musician, and you are going to create amazing playlists from a prompt. ` +
	`You will choose the best songs that fit the prompt and return them as a JSON object of the following shape: ` +
	`{"playlist": [{"artist": "artist name", "song": "song name"}]}. ` +
	`You will also be told how many songs to choose for the playlist.`

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  struct {
		ResponseMimeType string `json:"responseMimeType"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// generatedPlaylist is the structured payload the model is instructed to return.
type generatedPlaylist struct {
	Playlist []models.SongCandidate `json:"playlist"`
}

// GeminiGenerator implements [Generator] against the Gemini generateContent REST API.
type GeminiGenerator struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewGeminiGenerator creates a new generator client from configuration.
func NewGeminiGenerator(cfg shared.GeneratorConfig, logger *log.Logger) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: missing generator api_key", shared.ErrMissingCredentials)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &GeminiGenerator{
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
		logger:     logger,
	}, nil
}

// Generate produces count song candidates for a free-text theme.
//
// Unparsable model output is a [shared.ErrGenerationFailed]; the raw payload
// is logged for diagnosis, never surfaced to the user.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, count int) ([]models.SongCandidate, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: song count must be positive", shared.ErrInvalidInput)
	}

	request := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: fmt.Sprintf("Create a %d song playlist of: %s", count, prompt)}}, Role: "user"},
		},
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: generatorSystemPrompt}}},
	}
	request.GenerationConfig.ResponseMimeType = "application/json"

	encoded, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		g.logger.Error("generator returned non-2xx", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: status %d", shared.ErrGenerationFailed, resp.StatusCode)
	}

	var response geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrGenerationFailed, err)
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty response", shared.ErrGenerationFailed)
	}

	text := stripCodeFences(response.Candidates[0].Content.Parts[0].Text)

	var playlist generatedPlaylist
	if err := json.Unmarshal([]byte(text), &playlist); err != nil {
		g.logger.Error("generator returned unparsable payload", "payload", text)
		return nil, fmt.Errorf("%w: invalid structured output: %v", shared.ErrGenerationFailed, err)
	}

	if len(playlist.Playlist) == 0 {
		return nil, fmt.Errorf("%w: model returned no songs", shared.ErrGenerationFailed)
	}

	return playlist.Playlist, nil
}

// stripCodeFences removes markdown code fences the model sometimes wraps
// around JSON output despite the response mime type.
func stripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
