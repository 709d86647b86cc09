package audio

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// ErrNoPlayer is returned when no supported audio player is installed.
var ErrNoPlayer = errors.New("no audio player found (install aplay, paplay, afplay or ffplay)")

// ErrNoSamples is returned when synthesized speech is empty.
var ErrNoSamples = errors.New("synthesized speech contained no samples")

// Synthesizer produces raw PCM speech for text.
type Synthesizer interface {
	Speak(ctx context.Context, text string) ([]byte, error)
}

// Player caches synthesized speech as WAV files and plays them.
type Player struct {
	synth    Synthesizer
	cacheDir string
	logger   *log.Logger

	mu  sync.Mutex
	run func(ctx context.Context, path string) error
}

// NewPlayer returns a Player caching under cacheDir. A nil logger discards messages.
func NewPlayer(synth Synthesizer, cacheDir string, logger *log.Logger) *Player {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Player{
		synth:    synth,
		cacheDir: cacheDir,
		logger:   logger,
		run:      playFile,
	}
}

// Say synthesizes text (or reuses the cached clip) and plays it.
func (p *Player) Say(ctx context.Context, text string) error {
	path, err := p.Clip(ctx, text)
	if err != nil {
		return err
	}
	return p.run(ctx, path)
}

// Clip returns the path of the cached WAV for text, synthesizing it if needed.
func (p *Player) Clip(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("nothing to say")
	}
	path := filepath.Join(p.cacheDir, cacheKey(text)+".wav")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	pcm, err := p.synth.Speak(ctx, text)
	if err != nil {
		return "", err
	}
	samples, err := DecodePCM16(pcm)
	if err != nil {
		return "", err
	}
	if len(samples) == 0 {
		return "", ErrNoSamples
	}
	p.logger.Debug("synthesized speech", "text", text, "ms", Duration(pcm), "samples", len(samples))

	var buf bytes.Buffer
	if err := WriteWAV(&buf, pcm); err != nil {
		return "", err
	}
	if err := os.MkdirAll(p.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio cache: %w", err)
	}
	tmp, err := os.CreateTemp(p.cacheDir, "clip-*.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create clip: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to write clip: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close clip: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("failed to store clip: %w", err)
	}
	return path, nil
}

func cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:16])
}

var players = [][]string{
	{"aplay", "-q"},
	{"paplay"},
	{"afplay"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
}

func playFile(ctx context.Context, path string) error {
	for _, p := range players {
		bin, err := exec.LookPath(p[0])
		if err != nil {
			continue
		}
		cmd := exec.CommandContext(ctx, bin, append(p[1:], path)...)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("%s: %w: %s", p[0], err, strings.TrimSpace(string(out)))
		}
		return nil
	}
	return ErrNoPlayer
}
