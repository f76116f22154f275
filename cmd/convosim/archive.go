package main

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"convosim/internal/archive"
	"convosim/internal/config"
	"convosim/internal/export"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func archiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Manage the SQLite message archive",
		Long: `The archive keeps imported export messages so corpora can be rebuilt later
with --from-archive, even after the JSON files are gone.`,
	}
	cmd.AddCommand(archiveImportCmd())
	cmd.AddCommand(archiveStatsCmd())
	cmd.AddCommand(archiveBackupCmd())
	return cmd
}

func archiveImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [dir]",
		Short: "Import export files into the archive (default: export.dir)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dir := cfg.Export.Dir
			if len(args) == 1 {
				dir = args[0]
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			src := export.NewGlobSource(dir, cfg.Export.Pattern, logger)
			files, err := src.Files()
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no files matching %s in %s", cfg.Export.Pattern, dir)
			}
			msgs, err := src.LoadMessages(ctx)
			if err != nil {
				return err
			}

			store, err := archive.Open(cfg.Archive.DBPath, logger)
			if err != nil {
				return fmt.Errorf("archive: %w", err)
			}
			defer store.Close()

			res, err := store.Import(ctx, dir, len(files), msgs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Import %s: %d new, %d already archived (%d files)\n",
				res.ID, res.Inserted, res.Skipped, len(files))
			return nil
		},
	}
}

func archiveStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-sender counts and recent imports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := archive.Open(cfg.Archive.DBPath, logger)
			if err != nil {
				return fmt.Errorf("archive: %w", err)
			}
			defer store.Close()

			ctx := cmd.Context()
			stats, err := store.SenderStats(ctx)
			if err != nil {
				return err
			}
			imports, err := store.Imports(ctx, 10)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Archive: %s\n\nSenders:\n", store.Path())
			for _, s := range stats {
				fmt.Fprintf(out, "  %-32s %6d messages  %6d with text\n", s.Name, s.Messages, s.Text)
			}
			fmt.Fprintf(out, "\nImports:\n")
			for _, im := range imports {
				fmt.Fprintf(out, "  %s  %s  %d files, %d messages  (%s)\n",
					im.ID, im.Source, im.Files, im.Messages, humanize.Time(im.ImportedAt))
			}
			return nil
		},
	}
}

func archiveBackupCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create a .tar.gz of the archive, config and corpus files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if outputPath == "" {
				backupDir := filepath.Join(config.DefaultConfigDir(), "backups")
				if err := os.MkdirAll(backupDir, 0o755); err != nil {
					return fmt.Errorf("cannot create backup directory: %w", err)
				}
				ts := time.Now().Format("20060102-150405")
				outputPath = filepath.Join(backupDir, fmt.Sprintf("convosim-backup-%s.tar.gz", ts))
			}

			candidates := []string{cfg.Archive.DBPath, cfg.Archive.DBPath + "-wal", cfg.Archive.DBPath + "-shm",
				config.ExpandPath(resolveConfigPath())}
			for _, p := range participants(cfg) {
				candidates = append(candidates, p.CorpusPath)
			}
			var files []string
			for _, f := range candidates {
				if _, err := os.Stat(f); err == nil {
					files = append(files, f)
				}
			}
			if len(files) == 0 {
				return fmt.Errorf("nothing to back up (archive: %s)", cfg.Archive.DBPath)
			}

			if err := createTarGz(outputPath, files); err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backup created: %s\n", outputPath)
			for _, f := range files {
				var size uint64
				if info, err := os.Stat(f); err == nil {
					size = uint64(info.Size())
				}
				fmt.Fprintf(out, "  - %s (%s)\n", filepath.Base(f), humanize.Bytes(size))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (default: ~/.convosim/backups/convosim-backup-<timestamp>.tar.gz)")
	return cmd
}

// createTarGz creates a .tar.gz archive from the given files. The tar and
// gzip trailers are flushed before it returns, so a nil error means the
// archive is complete.
func createTarGz(outputPath string, files []string) (err error) {
	outFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := outFile.Close(); err == nil {
			err = cerr
		}
	}()

	gzWriter := gzip.NewWriter(outFile)
	tarWriter := tar.NewWriter(gzWriter)

	for _, filePath := range files {
		if err := addFileToTar(tarWriter, filePath); err != nil {
			return fmt.Errorf("add %s: %w", filePath, err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("close tar: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("close gzip: %w", err)
	}
	return nil
}

func addFileToTar(tw *tar.Writer, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = filepath.Base(filePath)

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	_, err = io.Copy(tw, file)
	return err
}
