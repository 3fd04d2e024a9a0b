// Command extract pre-extracts every test PDF in a directory into question
// JSON files, so extraction problems in a document set surface before
// anyone sits the test.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"exam-grader/internal/adapter/pdftext"
	"exam-grader/internal/config"
	"exam-grader/internal/extractor"
	"exam-grader/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	dir := flag.String("dir", "", "Directory containing test PDFs (defaults to the configured test directory)")
	outDir := flag.String("out", "", "Output directory for question JSON files (defaults to the input directory)")
	parallel := flag.Int("parallel", 4, "Number of PDFs to process concurrently")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Get()

	if *dir == "" {
		*dir = cfg.Dirs.Tests
	}
	if *outDir == "" {
		*outDir = *dir
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatal("Failed to read test directory", zap.String("dir", *dir), zap.Error(err))
	}

	lineSource := pdftext.NewExtractor()
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*parallel)

	processed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		processed++
		name := entry.Name()
		g.Go(func() error {
			return extractOne(ctx, lineSource, filepath.Join(*dir, name), *outDir)
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatal("Batch extraction failed", zap.Error(err))
	}
	log.Info("Batch extraction complete", zap.Int("documents", processed))
}

func extractOne(ctx context.Context, lines *pdftext.Extractor, path, outDir string) error {
	log := logger.Get()

	textLines, err := lines.Lines(ctx, path)
	if err != nil {
		return fmt.Errorf("extracting text from %s: %w", path, err)
	}
	result, err := extractor.ExtractQuestions(textLines)
	if err != nil {
		// A document with no questions is reported, not fatal to the batch.
		log.Warn("Document yielded no questions",
			zap.String("file", filepath.Base(path)),
			zap.Error(err),
		)
		return nil
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(outDir, base+".questions.json")
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling questions for %s: %w", path, err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	log.Info("Extracted test document",
		zap.String("file", filepath.Base(path)),
		zap.Int("questions", len(result.Questions)),
		zap.Int("anomalies", len(result.Anomalies)),
	)
	return nil
}
