package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pdfbinder/internal/common"
	"pdfbinder/internal/config"
	"pdfbinder/internal/database"
	"pdfbinder/internal/document"
	"pdfbinder/internal/intake"
	"pdfbinder/internal/recompress"
)

func main() {
	output := flag.String("o", "merged.pdf", "path of the merged output document")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall processing timeout")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: pdfbinder [-o merged.pdf] file.pdf photo.jpg ...")
		os.Exit(2)
	}

	cfg := config.New()
	logger := cfg.Logger

	db, err := database.NewDatabase(cfg.DatabaseDSN)
	if err != nil {
		logger.Error("failed to open stats database", "error", err)
		os.Exit(1)
	}

	orchestrator := intake.NewOrchestrator(
		logger,
		recompress.NewRecompressor(logger),
		document.NewValidator(logger),
		document.NewAssembler(logger),
	)
	orchestrator.SetSizeBudget(cfg.SizeBudgetBytes)
	orchestrator.SetRecorder(db)

	files := make([]common.File, 0, flag.NArg())
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("failed to read input", "file", path, "error", err)
			os.Exit(1)
		}

		modTime := time.Now()
		if info, err := os.Stat(path); err == nil {
			modTime = info.ModTime()
		}

		name := filepath.Base(path)
		files = append(files, common.File{
			Name:      name,
			Data:      data,
			MediaType: common.DetectMediaType(name, ""),
			ModTime:   modTime,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if _, err := orchestrator.AddFiles(ctx, files); err != nil {
		logger.Error("failed to add files", "error", err)
		os.Exit(1)
	}
	if err := orchestrator.AwaitSettled(ctx); err != nil {
		logger.Error("background processing did not finish", "error", err)
		os.Exit(1)
	}

	for _, entry := range orchestrator.Snapshot() {
		if entry.State == intake.StateFailed {
			logger.Warn("using original bytes after failed recompression",
				"file", entry.SourceFile.Name, "reason", entry.FailureReason)
		}
	}

	entries := orchestrator.Snapshot()
	plan, err := orchestrator.PrepareForMerge(entries)
	if err != nil {
		logger.Error("merge preparation failed", "error", err)
		os.Exit(1)
	}

	out, err := orchestrator.Merge(entries)
	if err != nil {
		logger.Error("merge failed", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*output, out, 0644); err != nil {
		logger.Error("failed to write output", "file", *output, "error", err)
		os.Exit(1)
	}

	logger.Info("wrote merged document",
		"output", *output,
		"files", len(plan.Files),
		"input_total", common.FormatFileSize(plan.TotalBytes),
		"output_size", common.FormatFileSize(int64(len(out))),
	)

	if stats, err := db.Stats(); err == nil {
		logger.Info("session stats",
			"merges", stats.MergesCompleted,
			"files", stats.FilesMerged,
			"saved", common.FormatFileSize(stats.BytesSaved()),
		)
	}
}
