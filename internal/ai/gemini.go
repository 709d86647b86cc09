package ai

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/verte-zerg/habitdrill/internal/model"
)

// Gemini talks to the Gemini API for blanks, hints and speech.
type Gemini struct {
	client    *genai.Client
	model     string
	hintModel string
	ttsModel  string
	voice     string
}

// NewGemini builds a Gemini client. The API key falls back to the
// GEMINI_API_KEY and GOOGLE_API_KEY environment variables.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	return newGemini(ctx, cfg, nil)
}

func newGemini(ctx context.Context, cfg Config, httpOpts *genai.HTTPOptions) (*Gemini, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: no API key (set GEMINI_API_KEY)")
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if httpOpts != nil {
		cc.HTTPOptions = *httpOpts
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	textModel := withDefault(cfg.Model, DefaultGeminiModel)
	return &Gemini{
		client:    client,
		model:     textModel,
		hintModel: withDefault(cfg.HintModel, textModel),
		ttsModel:  withDefault(cfg.TTSModel, DefaultTTSModel),
		voice:     withDefault(cfg.Voice, DefaultVoice),
	}, nil
}

// BlankPhrase asks for a blanked variant of req.Phrase as schema-checked JSON.
func (g *Gemini) BlankPhrase(ctx context.Context, req model.BlankRequest) (model.BlankResult, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(BlankPrompt(req)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   blankSchema,
	})
	if err != nil {
		return model.BlankResult{}, fmt.Errorf("gemini: %w", err)
	}
	return ParseBlankResult(resp.Text())
}

// Hint asks for a clue toward one phrase of the category.
func (g *Gemini) Hint(ctx context.Context, topicTitle string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.hintModel, genai.Text(HintPrompt(topicTitle)), &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	return cleanHint(resp.Text())
}

// Speak returns 24kHz mono little-endian 16-bit PCM for text.
func (g *Gemini) Speak(ctx context.Context, text string) ([]byte, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.ttsModel, genai.Text(text), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.voice},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrNoAudio
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, nil
		}
	}
	return nil, ErrNoAudio
}

var blankSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"blankedPhrase": {Type: genai.TypeString},
		"blankedWords":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"blankedPhrase", "blankedWords"},
}
