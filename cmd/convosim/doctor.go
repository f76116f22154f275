package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"convosim/internal/config"
	"convosim/internal/export"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks before generating a conversation",
		Long: `Verifies the configuration, the export files, the participants' messages,
the corpus output paths and the archive database. Reports pass/fail for each check.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := config.ExpandPath(resolveConfigPath())
			fmt.Printf("convosim doctor v%s\n", version)
			fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

			passed := 0
			failed := 0
			warned := 0

			// 1. Config
			var cfg *config.Config
			if _, err := os.Stat(cfgPath); err != nil {
				printWarn("Config file", fmt.Sprintf("not found at %s, using defaults", cfgPath))
				warned++
				cfg = config.Defaults()
				cfg.ExpandPaths()
			} else if c, err := config.Load(cfgPath); err != nil {
				printFail("Config validation", err.Error())
				failed++
				fmt.Printf("\n%d passed, %d failed\n", passed, failed)
				return fmt.Errorf("config is invalid")
			} else {
				printPass("Config file", cfgPath)
				passed++
				cfg = c
			}

			// 2. Export files
			src := export.NewGlobSource(cfg.Export.Dir, cfg.Export.Pattern, logger)
			files, err := src.Files()
			switch {
			case err != nil:
				printFail("Export files", err.Error())
				failed++
			case len(files) == 0:
				printFail("Export files", fmt.Sprintf("no %s in %s", cfg.Export.Pattern, cfg.Export.Dir))
				failed++
			default:
				printPass("Export files", fmt.Sprintf("%d file(s) in %s", len(files), cfg.Export.Dir))
				passed++
			}

			// 3. Participants have text messages
			if len(files) > 0 {
				msgs, err := src.LoadMessages(context.Background())
				if err != nil {
					printFail("Export parse", err.Error())
					failed++
				} else {
					counts := make(map[string]int)
					for _, s := range export.CountSenders(msgs) {
						counts[s.Name] = s.Text
					}
					for _, p := range participants(cfg) {
						if n := counts[p.Name]; n == 0 {
							printFail("Sender: "+p.Label, fmt.Sprintf("no text messages from %q", p.Name))
							failed++
						} else {
							printPass("Sender: "+p.Label, fmt.Sprintf("%d text messages", n))
							passed++
						}
					}
				}
			}

			// 4. Corpus paths writable
			for _, p := range participants(cfg) {
				dir := filepath.Dir(p.CorpusPath)
				if info, err := os.Stat(dir); err != nil || !info.IsDir() {
					printFail("Corpus: "+p.Label, fmt.Sprintf("directory missing: %s", dir))
					failed++
				} else {
					printPass("Corpus: "+p.Label, p.CorpusPath)
					passed++
				}
			}

			// 5. Archive database
			if err := checkDatabase(cfg.Archive.DBPath); err != nil {
				printWarn("Archive", err.Error())
				warned++
			} else {
				printPass("Archive", cfg.Archive.DBPath)
				passed++
			}

			fmt.Printf("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
			fmt.Printf("Results: %d passed, %d warnings, %d failed\n", passed, warned, failed)
			if failed > 0 {
				fmt.Printf("\nPlease fix the failed checks before running convosim.\n")
				return fmt.Errorf("%d check(s) failed", failed)
			}
			if warned > 0 {
				fmt.Printf("\nconvosim should work but consider fixing the warnings.\n")
			} else {
				fmt.Printf("\nAll checks passed! Run 'convosim converse'.\n")
			}
			return nil
		},
	}
}

func checkDatabase(dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("cannot create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("cannot open: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("cannot ping: %w", err)
	}

	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS _doctor_test (id INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	db.ExecContext(ctx, "DROP TABLE IF EXISTS _doctor_test")

	return nil
}

func printPass(check, detail string) {
	fmt.Printf("  [PASS] %-20s %s\n", check, detail)
}

func printFail(check, detail string) {
	fmt.Printf("  [FAIL] %-20s %s\n", check, detail)
}

func printWarn(check, detail string) {
	fmt.Printf("  [WARN] %-20s %s\n", check, detail)
}
