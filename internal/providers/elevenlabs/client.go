package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"reelsmith/internal/config"
	"reelsmith/internal/services"
)

const stageName = "synthesize"

// Client calls the ElevenLabs text-to-speech API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	modelID    string
	stability  float64
	similarity float64
}

// New constructs a client from provider configuration.
func New(cfg config.ElevenLabs) *Client {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		modelID:    cfg.ModelID,
		stability:  cfg.Stability,
		similarity: cfg.SimilarityBoost,
	}
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize streams narration audio for text into dest. The voice selector
// falls back to the provider default when empty.
func (c *Client) Synthesize(ctx context.Context, text, voiceID, dest string) error {
	if strings.TrimSpace(text) == "" {
		return services.Wrap(services.ErrProviderUnavailable, stageName, "request", "empty script text", nil)
	}

	payload, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: c.modelID,
		VoiceSettings: voiceSettings{
			Stability:       c.stability,
			SimilarityBoost: c.similarity,
		},
	})
	if err != nil {
		return services.Wrap(services.ErrProviderUnavailable, stageName, "request", "encode payload", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s/stream", c.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return services.Wrap(services.ErrProviderUnavailable, stageName, "request", "build request", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrProviderUnavailable, stageName, "request", "speech synthesis provider unreachable", err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return err
	}

	out, err := os.Create(dest)
	if err != nil {
		return services.Wrap(services.ErrProviderUnavailable, stageName, "write", "create narration file", err)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return services.Wrap(services.ErrProviderUnavailable, stageName, "write", "stream narration audio", err)
	}
	if written == 0 {
		return services.Wrap(services.ErrProviderUnavailable, stageName, "write", "provider returned empty audio", nil)
	}
	return out.Close()
}

func classifyStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	detail := fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return services.Wrap(services.ErrProviderAuth, stageName, "request", detail, nil)
	case http.StatusTooManyRequests:
		return services.Wrap(services.ErrProviderQuota, stageName, "request", detail, nil)
	default:
		return services.Wrap(services.ErrProviderUnavailable, stageName, "request", detail, nil)
	}
}
