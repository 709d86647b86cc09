package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/verte-zerg/habitdrill/internal/model"
)

func newGeminiServer(t *testing.T, part map[string]any, paths *[]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*paths = append(*paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"role":  "model",
						"parts": []any{part},
					},
				},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestGemini(t *testing.T, srv *httptest.Server) *Gemini {
	t.Helper()
	g, err := newGemini(context.Background(), Config{APIKey: "test-key"}, &genai.HTTPOptions{BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("new gemini: %v", err)
	}
	return g
}

func TestGeminiBlankPhrase(t *testing.T) {
	var paths []string
	srv := newGeminiServer(t, map[string]any{
		"text": `{"blankedPhrase":"[BLANK] HIGH IN STEERING","blankedWords":["AIM"]}`,
	}, &paths)
	g := newTestGemini(t, srv)

	res, err := g.BlankPhrase(context.Background(), model.BlankRequest{TopicTitle: "t", Phrase: "AIM HIGH IN STEERING"})
	if err != nil {
		t.Fatalf("blank phrase: %v", err)
	}
	if res.BlankedWords[0] != "AIM" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(paths) != 1 || !strings.Contains(paths[0], DefaultGeminiModel) {
		t.Fatalf("unexpected request paths: %v", paths)
	}
}

func TestGeminiSpeak(t *testing.T) {
	pcm := []byte{0x00, 0x40, 0x00, 0xC0}
	var paths []string
	srv := newGeminiServer(t, map[string]any{
		"inlineData": map[string]any{
			"mimeType": "audio/L16;codec=pcm;rate=24000",
			"data":     base64.StdEncoding.EncodeToString(pcm),
		},
	}, &paths)
	g := newTestGemini(t, srv)

	got, err := g.Speak(context.Background(), "AIM HIGH IN STEERING")
	if err != nil {
		t.Fatalf("speak: %v", err)
	}
	if string(got) != string(pcm) {
		t.Fatalf("unexpected audio bytes: %v", got)
	}
	if !strings.Contains(paths[0], DefaultTTSModel) {
		t.Fatalf("expected tts model in path, got %v", paths)
	}
}

func TestGeminiRequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	if _, err := NewGemini(context.Background(), Config{}); err == nil {
		t.Fatalf("expected missing key error")
	}
}
