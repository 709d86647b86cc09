// Package main provides the CLI entrypoint for habitdrill.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/habitdrill/internal/ai"
	"github.com/verte-zerg/habitdrill/internal/audio"
	"github.com/verte-zerg/habitdrill/internal/config"
	"github.com/verte-zerg/habitdrill/internal/corpus"
	"github.com/verte-zerg/habitdrill/internal/generator"
	"github.com/verte-zerg/habitdrill/internal/logging"
	"github.com/verte-zerg/habitdrill/internal/model"
	"github.com/verte-zerg/habitdrill/internal/performance"
	"github.com/verte-zerg/habitdrill/internal/stats"
	"github.com/verte-zerg/habitdrill/internal/statsui"
	"github.com/verte-zerg/habitdrill/internal/store"
	"github.com/verte-zerg/habitdrill/internal/tui"
)

const (
	defaultSet         = corpus.FiveSeeingHabits
	defaultLevel       = int(model.LevelMatch)
	defaultCurveWindow = 10
	defaultTopWords    = 15
	phraseColumnWidth  = 48
)

var (
	practiceSet      string
	practiceLevel    int
	practiceSeed     int64
	practiceProvider string
	practiceModel    string

	statsSet         string
	statsLevel       int
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsTop         int
	statsPlain       bool

	setsPhrases bool
	speakClip   bool
)

// settings is the merged result of the config file and flags.
type settings struct {
	practice model.Config
	ai       ai.Config
	logLevel log.Level
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "habitdrill",
		Short:         "Drill the Smith System driving habits in the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}
	addPracticeFlags(rootCmd)

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSetsCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newSpeakCmd())

	return rootCmd
}

func addPracticeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&practiceSet, "set", defaultSet, "curriculum: "+strings.Join(corpus.IDs(), " or "))
	cmd.Flags().IntVar(&practiceLevel, "level", defaultLevel, "level 1-4 (match, identify, complete, recall)")
	cmd.Flags().Int64Var(&practiceSeed, "seed", 0, "random seed for question order (0 = random)")
	cmd.Flags().StringVar(&practiceProvider, "provider", ai.ProviderGemini, "text service: gemini or ollama")
	cmd.Flags().StringVar(&practiceModel, "model", "", "model name for the text service")
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "set", &practiceSet, fileCfg.Practice.Set)
	applyIntConfig(cmd, "level", &practiceLevel, fileCfg.Practice.Level)
	applyInt64Config(cmd, "seed", &practiceSeed, fileCfg.Practice.Seed)
	applyStringConfig(cmd, "provider", &practiceProvider, fileCfg.AI.Provider)
	applyStringConfig(cmd, "model", &practiceModel, fileCfg.AI.Model)

	timeout, err := fileCfg.AI.TimeoutDuration()
	if err != nil {
		return settings{}, err
	}
	logLevel, err := logging.ParseLevel(deref(fileCfg.Log.Level))
	if err != nil {
		return settings{}, err
	}

	s := settings{
		practice: model.Config{
			Curriculum: practiceSet,
			Level:      model.Level(practiceLevel),
			Seed:       practiceSeed,
		},
		ai: ai.Config{
			Provider:  practiceProvider,
			Model:     practiceModel,
			HintModel: deref(fileCfg.AI.HintModel),
			TTSModel:  deref(fileCfg.AI.TTSModel),
			Voice:     deref(fileCfg.AI.Voice),
			OllamaURL: deref(fileCfg.AI.OllamaURL),
			Timeout:   timeout,
		},
		logLevel: logLevel,
	}
	if err := validatePractice(s.practice); err != nil {
		return settings{}, err
	}
	return s, nil
}

func validatePractice(cfg model.Config) error {
	if _, err := corpus.Get(cfg.Curriculum); err != nil {
		return fmt.Errorf("--set: %w", err)
	}
	if !cfg.Level.Valid() {
		return fmt.Errorf("--level must be between %d and %d", model.LevelMatch, model.LevelRecall)
	}
	return nil
}

func newGenerator(seed int64) *generator.Generator {
	if seed != 0 {
		return generator.NewSeeded(seed)
	}
	return generator.New()
}

func openStore(logger *log.Logger) (*store.Store, func(), error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	closeFn := func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("failed to close db", "err", cerr)
		}
	}
	return st, closeFn, nil
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file.
	logger, logFile, err := logging.OpenFile(config.DefaultLogPath(), s.logLevel)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
	}()

	st, closeStore, err := openStore(logger)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := context.Background()
	opts := tui.Options{
		Config:  s.practice,
		Store:   st,
		Perf:    performance.New(st, logger),
		Gen:     newGenerator(s.practice.Seed),
		Logger:  logger,
		Timeout: s.ai.Timeout,
	}
	svc, err := ai.New(ctx, s.ai)
	if err != nil {
		logger.Warn("text service unavailable", "provider", s.ai.Provider, "err", err)
	} else {
		opts.AI = svc
		if g, ok := svc.(*ai.Gemini); ok {
			opts.Speaker = audio.NewPlayer(g, config.DefaultAudioCacheDir(), logger)
		}
	}

	program := tea.NewProgram(tui.NewModel(opts), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newSetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sets",
		Short: "List curricula and their topics",
		Args:  cobra.NoArgs,
		RunE:  runSetsCmd,
	}
	cmd.Flags().BoolVar(&setsPhrases, "phrases", false, "also print every phrase")
	return cmd
}

func runSetsCmd(cmd *cobra.Command, _ []string) error {
	return writeSets(cmd.OutOrStdout(), corpus.All(), setsPhrases)
}

func writeSets(w io.Writer, curricula []model.Curriculum, phrases bool) error {
	for _, c := range curricula {
		if _, err := fmt.Fprintf(w, "%s\t%s (%d topics, %d phrases)\n", c.ID, c.Title, len(c.Topics), c.PhraseCount()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		for _, t := range c.Topics {
			if _, err := fmt.Fprintf(w, "  %s\t%s\n", t.ID, t.Title); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			if !phrases {
				continue
			}
			for _, p := range t.Phrases {
				if _, err := fmt.Fprintf(w, "    - %s\n", p); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
			}
		}
	}
	return nil
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a generated question set as JSON",
		Args:  cobra.NoArgs,
		RunE:  runGenerateCmd,
	}
	addPracticeFlags(cmd)
	return cmd
}

type generated struct {
	Set       string           `json:"set"`
	Level     model.Level      `json:"level"`
	Questions []model.Question `json:"questions"`
}

func runGenerateCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger := logging.New(cmd.ErrOrStderr(), s.logLevel)
	curriculum, err := corpus.Get(s.practice.Curriculum)
	if err != nil {
		return err
	}

	timeout := s.ai.Timeout
	if timeout <= 0 {
		timeout = ai.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var (
		blanker generator.Blanker
		perf    model.PerformanceData
	)
	if s.practice.Level == model.LevelBlank {
		svc, err := ai.New(ctx, s.ai)
		if err != nil {
			return err
		}
		blanker = svc
		st, closeStore, err := openStore(logger)
		if err != nil {
			return err
		}
		defer closeStore()
		perf = performance.New(st, logger).Get(ctx)
	}

	started := time.Now()
	questions, err := newGenerator(s.practice.Seed).Generate(ctx, s.practice.Level, curriculum.Topics, perf, blanker)
	if err != nil {
		return fmt.Errorf("failed to generate questions: %w", err)
	}
	logger.Debug("generated questions", "count", len(questions), "elapsed", time.Since(started))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(generated{Set: curriculum.ID, Level: s.practice.Level, Questions: questions})
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSet, "set", "", "curriculum filter")
	cmd.Flags().IntVar(&statsLevel, "level", 0, "level filter (1-4)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsTop, "top", defaultTopWords, "number of failed words to list")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	return cmd
}

func buildStatsConfig() (model.StatsConfig, error) {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLevel != 0 && !model.Level(statsLevel).Valid() {
		return model.StatsConfig{}, fmt.Errorf("--level must be between %d and %d", model.LevelMatch, model.LevelRecall)
	}
	if statsSet != "" {
		if _, err := corpus.Get(statsSet); err != nil {
			return model.StatsConfig{}, fmt.Errorf("--set: %w", err)
		}
	}
	if statsLast < 0 || statsTop < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last and --top must be >= 0")
	}
	return model.StatsConfig{
		Curriculum:  statsSet,
		Level:       model.Level(statsLevel),
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: max(1, statsCurveWindow),
		TopWords:    statsTop,
	}, nil
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildStatsConfig()
	if err != nil {
		return err
	}
	logger := logging.New(cmd.ErrOrStderr(), logging.DefaultLevel)
	st, closeStore, err := openStore(logger)
	if err != nil {
		return err
	}
	defer closeStore()
	perf := performance.New(st, logger)

	if statsPlain {
		return writePlainReport(cmd.Context(), cmd.OutOrStdout(), st, perf.Get(cmd.Context()), cfg)
	}

	program := tea.NewProgram(statsui.NewModel(st, perf, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func writePlainReport(ctx context.Context, w io.Writer, st stats.SessionLister, perf model.PerformanceData, cfg model.StatsConfig) error {
	report, err := stats.BuildReport(ctx, st, perf, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := stats.RenderSummary(w, report.Sessions); err != nil {
		return err
	}
	if err := stats.RenderCurves(w, report.Sessions, cfg.CurveWindow, 0); err != nil {
		return err
	}
	return stats.RenderStruggleTable(w, report.Struggles, phraseColumnWidth)
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget all recorded failed words",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	logger := logging.New(cmd.ErrOrStderr(), logging.DefaultLevel)
	st, closeStore, err := openStore(logger)
	if err != nil {
		return err
	}
	defer closeStore()
	performance.New(st, logger).Reset(cmd.Context())
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), "Performance data cleared."); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newSpeakCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speak <text>",
		Short: "Read text aloud with the speech service",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSpeakCmd,
	}
	cmd.Flags().BoolVar(&speakClip, "clip", false, "print the cached WAV path instead of playing it")
	return cmd
}

func runSpeakCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	level, err := logging.ParseLevel(deref(fileCfg.Log.Level))
	if err != nil {
		return err
	}
	logger := logging.New(cmd.ErrOrStderr(), level)
	timeout, err := fileCfg.AI.TimeoutDuration()
	if err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = ai.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	g, err := ai.NewGemini(ctx, ai.Config{
		TTSModel: deref(fileCfg.AI.TTSModel),
		Voice:    deref(fileCfg.AI.Voice),
	})
	if err != nil {
		return err
	}
	player := audio.NewPlayer(g, config.DefaultAudioCacheDir(), logger)
	text := strings.Join(args, " ")
	if !speakClip {
		return player.Say(ctx, text)
	}
	path, err := player.Clip(ctx, text)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
	return err
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# habitdrill configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# set = %q                 # Curriculum: 5s or 10s
# level = %d                  # 1 match, 2 identify, 3 complete, 4 recall
# seed = 0                   # Fixed question order (0 = random)

[ai]
# provider = %q         # gemini or ollama
# model = %q      # Text model (ollama default %q)
# hint-model = ""            # Model for recall hints (defaults to model)
# tts-model = %q
# voice = %q
# ollama-url = %q
# timeout = %q

[log]
# level = "warn"             # debug, info, warn, error
`,
		defaultSet,
		defaultLevel,
		ai.ProviderGemini,
		ai.DefaultGeminiModel,
		ai.DefaultOllamaModel,
		ai.DefaultTTSModel,
		ai.DefaultVoice,
		ai.DefaultOllamaURL,
		ai.DefaultTimeout.String(),
	)
}
