// Package ai wraps the text-generation and speech services.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/habitdrill/internal/model"
)

// Providers.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Defaults for each provider.
const (
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultTTSModel    = "gemini-2.5-flash-preview-tts"
	DefaultVoice       = "Kore"
	DefaultOllamaModel = "gemma3"
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultTimeout     = 60 * time.Second
)

// ErrMalformedResponse is returned when a service answer does not match
// the expected shape.
var ErrMalformedResponse = errors.New("malformed model response")

// ErrNoAudio is returned when the speech service answers without audio.
var ErrNoAudio = errors.New("speech response contained no audio")

// Config selects and tunes a provider.
type Config struct {
	Provider  string
	Model     string
	HintModel string
	TTSModel  string
	Voice     string
	OllamaURL string
	APIKey    string
	Timeout   time.Duration
}

// Service generates blanked phrases and recall hints.
type Service interface {
	BlankPhrase(ctx context.Context, req model.BlankRequest) (model.BlankResult, error)
	Hint(ctx context.Context, topicTitle string) (string, error)
}

// Speaker synthesizes speech as raw little-endian 16-bit PCM.
type Speaker interface {
	Speak(ctx context.Context, text string) ([]byte, error)
}

// New returns the Service for cfg.Provider.
func New(ctx context.Context, cfg Config) (Service, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderGemini:
		g, err := NewGemini(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	case ProviderOllama:
		o, err := NewOllama(cfg)
		if err != nil {
			return nil, err
		}
		return o, nil
	default:
		return nil, fmt.Errorf("unknown provider %q (use %s or %s)", cfg.Provider, ProviderGemini, ProviderOllama)
	}
}

// ParseBlankResult decodes the JSON answer of a blank request. Code fences
// around the JSON are tolerated; missing or empty fields are not.
func ParseBlankResult(text string) (model.BlankResult, error) {
	text = stripFences(text)
	var raw struct {
		BlankedPhrase *string  `json:"blankedPhrase"`
		BlankedWords  []string `json:"blankedWords"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return model.BlankResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if raw.BlankedPhrase == nil || strings.TrimSpace(*raw.BlankedPhrase) == "" {
		return model.BlankResult{}, fmt.Errorf("%w: missing blankedPhrase", ErrMalformedResponse)
	}
	if len(raw.BlankedWords) == 0 {
		return model.BlankResult{}, fmt.Errorf("%w: missing blankedWords", ErrMalformedResponse)
	}
	return model.BlankResult{BlankedPhrase: *raw.BlankedPhrase, BlankedWords: raw.BlankedWords}, nil
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func cleanHint(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty hint", ErrMalformedResponse)
	}
	return text, nil
}

func withDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
