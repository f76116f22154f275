package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"convosim/internal/archive"
	"convosim/internal/chain"
	"convosim/internal/config"
	"convosim/internal/conversation"
	"convosim/internal/corpus"
	"convosim/internal/domain"
	"convosim/internal/export"
	"convosim/internal/metrics"
	"convosim/internal/sampler"
	"convosim/internal/subject"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version     = "0.1.0"
	logger      *slog.Logger
	configPath  string // overridable via --config flag
	fromArchive bool
)

func main() {
	logger = newLogger("info")
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "convosim",
		Short: "convosim: fake conversations from two people's chat history",
		Long: `convosim cleans the messages two people sent each other into one corpus
per person, trains a Markov chain on each corpus and prints an invented
back-and-forth between them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json or .yaml (default: ~/.convosim/config.json)")
	root.PersistentFlags().BoolVar(&fromArchive, "from-archive", false, "read messages from the SQLite archive instead of export files")

	root.AddCommand(initCmd())
	root.AddCommand(corpusCmd())
	root.AddCommand(converseCmd())
	root.AddCommand(sendersCmd())
	root.AddCommand(archiveCmd())
	root.AddCommand(configCmd())
	root.AddCommand(doctorCmd())
	return root
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

// loadConfig reads the config file. Without --config a missing default file
// means defaults; an explicit path must exist.
func loadConfig() (*config.Config, error) {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if configPath == "" && errors.Is(err, fs.ErrNotExist) {
			logger.Debug("no config file, using defaults", "path", cfgPath)
			cfg = config.Defaults()
			cfg.ExpandPaths()
		} else {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	logger = newLogger(cfg.General.LogLevel)
	return cfg, nil
}

func modelOptions(cfg *config.Config) chain.Options {
	return chain.Options{
		StateSize:       cfg.Model.StateSize,
		Tries:           cfg.Model.Tries,
		TestOutput:      cfg.Model.TestOutput,
		MaxOverlapRatio: cfg.Model.MaxOverlapRatio,
		MaxOverlapTotal: cfg.Model.MaxOverlapTotal,
		MinWords:        cfg.Model.MinWords,
		MaxWords:        cfg.Model.MaxWords,
	}
}

func participants(cfg *config.Config) []conversation.Participant {
	out := make([]conversation.Participant, 0, 2)
	for _, p := range []config.ParticipantConfig{cfg.Participants.A, cfg.Participants.B} {
		out = append(out, conversation.Participant{
			Name:       p.Name,
			Label:      p.Label,
			CorpusPath: cfg.Resolve(p.Corpus),
		})
	}
	return out
}

// loadMessages reads every raw message from the export files, or from the
// archive with --from-archive.
func loadMessages(ctx context.Context, cfg *config.Config) ([]domain.MessageRecord, error) {
	var src domain.MessageSource
	if fromArchive {
		store, err := archive.Open(cfg.Archive.DBPath, logger)
		if err != nil {
			return nil, fmt.Errorf("archive: %w", err)
		}
		defer store.Close()
		src = store
	} else {
		src = export.NewGlobSource(cfg.Export.Dir, cfg.Export.Pattern, logger)
	}
	msgs, err := src.LoadMessages(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("messages loaded", "count", len(msgs), "archive", fromArchive)
	return msgs, nil
}

// writeMetrics dumps the run's metrics when enabled. Failures are logged
// only; they never change the exit status.
func writeMetrics(cfg *config.Config) {
	if !cfg.Metrics.Enabled {
		return
	}
	path := cfg.Resolve(cfg.Metrics.Path)
	if err := metrics.Collector.WriteFile(path); err != nil {
		logger.Warn("cannot write metrics", "path", path, "err", err)
		return
	}
	logger.Debug("metrics written", "path", path)
}

func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := config.ExpandPath(resolveConfigPath())
			if _, err := os.Stat(cfgPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
			}
			if err := config.Save(cfgPath, config.Defaults()); err != nil {
				return err
			}
			logger.Info("initialized", "config", cfgPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func corpusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "corpus",
		Short: "Build the corpus file of both participants",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			msgs, err := loadMessages(ctx, cfg)
			if err != nil {
				return err
			}
			b := corpus.NewBuilder(logger)
			for _, p := range participants(cfg) {
				if _, err := b.BuildAndWrite(p.Name, p.CorpusPath, msgs); err != nil {
					return err
				}
			}
			writeMetrics(cfg)
			return nil
		},
	}
}

func converseCmd() *cobra.Command {
	var rounds int
	var mode string

	cmd := &cobra.Command{
		Use:   "converse",
		Short: "Build both models and print a generated conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("rounds") {
				cfg.Conversation.Rounds = rounds
			}
			if cmd.Flags().Changed("mode") {
				cfg.Conversation.Mode = mode
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			m, err := conversation.ParseMode(cfg.Conversation.Mode)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			msgs, err := loadMessages(ctx, cfg)
			if err != nil {
				return err
			}

			b := corpus.NewBuilder(logger)
			opts := modelOptions(cfg)
			var speakers []conversation.Speaker
			for _, p := range participants(cfg) {
				sp, err := conversation.Prepare(p, msgs, b, opts)
				if err != nil {
					return err
				}
				speakers = append(speakers, sp)
			}

			var subjects conversation.SubjectFinder
			if m == conversation.ModeCrossSeeded {
				subjects = subject.New(subject.NewProseTagger, nil, logger)
			}
			d := conversation.NewDriver(sampler.New(cfg.Generation.MaxRetries, logger), subjects, cmd.OutOrStdout(), logger)

			err = d.Run(ctx, speakers[0], speakers[1], cfg.Conversation.Rounds, m)
			writeMetrics(cfg)
			return err
		},
	}

	cmd.Flags().IntVarP(&rounds, "rounds", "n", 100, "number of A/B exchanges")
	cmd.Flags().StringVarP(&mode, "mode", "m", "independent", "conversation mode: independent | cross-seeded")
	return cmd
}

func sendersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "senders",
		Short: "List sender names and message counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			msgs, err := loadMessages(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range export.CountSenders(msgs) {
				fmt.Fprintf(out, "%-32s %6d messages  %6d with text\n", s.Name, s.Messages, s.Text)
			}
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and modify configuration",
		Long:  "Get, set, and list configuration values. Changes are saved to the config file.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [path]",
		Short: "Get a config value (e.g. conversation.mode)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			val, err := config.GetByPath(cfg, args[0])
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(val, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set [path] [value]",
		Short: "Set a config value (e.g. conversation.rounds 20)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := config.SetByPath(cfg, args[0], args[1]); err != nil {
				return fmt.Errorf("set value: %w", err)
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			if err := config.Save(cfgPath, cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			logger.Info("config updated", "path", args[0], "value", args[1], "file", cfgPath)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all config values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			paths := config.ListPaths(cfg)
			out := cmd.OutOrStdout()
			for _, k := range config.SortedPaths(cfg) {
				fmt.Fprintf(out, "%s = %v\n", k, paths[k])
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), resolveConfigPath())
		},
	})

	return cmd
}
