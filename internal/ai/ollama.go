package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	api "github.com/ollama/ollama/api"

	"github.com/verte-zerg/habitdrill/internal/model"
)

const blankSystemPrompt = "You turn study phrases into fill-in-the-blank exercises. Answer with JSON only, no markdown."

// blankFormat is the JSON schema Ollama constrains blank answers to.
var blankFormat = json.RawMessage(`{
	"type": "object",
	"properties": {
		"blankedPhrase": {"type": "string"},
		"blankedWords": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["blankedPhrase", "blankedWords"]
}`)

// Ollama talks to a local Ollama server.
type Ollama struct {
	client *api.Client
	model  string
}

// NewOllama builds a client for cfg.OllamaURL.
func NewOllama(cfg Config) (*Ollama, error) {
	base, err := url.Parse(withDefault(cfg.OllamaURL, DefaultOllamaURL))
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}
	return &Ollama{
		client: api.NewClient(base, httpClient),
		model:  withDefault(cfg.Model, DefaultOllamaModel),
	}, nil
}

// BlankPhrase asks the local model for a blanked variant of req.Phrase.
func (o *Ollama) BlankPhrase(ctx context.Context, req model.BlankRequest) (model.BlankResult, error) {
	text, err := o.chat(ctx, blankSystemPrompt, BlankPrompt(req), blankFormat)
	if err != nil {
		return model.BlankResult{}, err
	}
	return ParseBlankResult(text)
}

// Hint asks the local model for a clue toward one phrase of the category.
func (o *Ollama) Hint(ctx context.Context, topicTitle string) (string, error) {
	text, err := o.chat(ctx, "", HintPrompt(topicTitle), nil)
	if err != nil {
		return "", err
	}
	return cleanHint(text)
}

func (o *Ollama) chat(ctx context.Context, system, user string, format json.RawMessage) (string, error) {
	stream := false
	var messages []api.Message
	if system != "" {
		messages = append(messages, api.Message{Role: "system", Content: system})
	}
	messages = append(messages, api.Message{Role: "user", Content: user})
	req := &api.ChatRequest{
		Model:    o.model,
		Stream:   &stream,
		Messages: messages,
		Format:   format,
	}

	var out strings.Builder
	err := o.client.Chat(ctx, req, func(cr api.ChatResponse) error {
		out.WriteString(cr.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	return out.String(), nil
}
