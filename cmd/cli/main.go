package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/atotto/clipboard"

	"github.com/ktuntum/statement-ocr/internal/config"
	"github.com/ktuntum/statement-ocr/internal/document"
	"github.com/ktuntum/statement-ocr/internal/export"
	"github.com/ktuntum/statement-ocr/internal/extract"
	"github.com/ktuntum/statement-ocr/internal/logger"
)

func main() {
	var (
		filePath = flag.String("file", "", "Path to the bank statement (PDF, JPEG, PNG, WEBP or HEIC)")
		output   = flag.String("o", "", "Write the CSV to this file instead of stdout")
		copyCSV  = flag.Bool("copy", false, "Copy the CSV to the system clipboard")
		model    = flag.String("model", "", "Gemini model (defaults to GEMINI_MODEL or "+config.DefaultModel+")")
		quiet    = flag.Bool("quiet", false, "Suppress the summary table")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: cli -file statement.pdf [-o transactions.csv] [-copy]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *model == "" {
		*model = cfg.Gemini.Model
	}

	doc, err := document.EncodeFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("Failed to read document")
	}
	if !document.SupportedMediaType(doc.MediaType) {
		log.Fatal().
			Str("file", *filePath).
			Str("media_type", doc.MediaType).
			Msg("Unsupported file type; upload a PDF or an image (JPEG, PNG, WEBP, HEIC)")
	}

	ctx := context.Background()

	extractor, err := extract.NewGeminiExtractor(ctx, cfg.Gemini.APIKey, *model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create extraction client (is GEMINI_API_KEY set?)")
	}

	log.Info().
		Str("file", *filePath).
		Str("media_type", doc.MediaType).
		Int("pages", doc.Pages).
		Str("model", *model).
		Msg("Analyzing statement")

	txs, err := extractor.Extract(ctx, doc)
	if err != nil {
		log.Fatal().Err(err).Msg("Extraction failed")
	}

	if !*quiet {
		printSummary(txs)
	}

	csv := export.CSV(txs)

	if err := writeCSV(csv, *output, os.Stdout); err != nil {
		log.Fatal().Err(err).Str("path", *output).Msg("Failed to write CSV")
	}
	if *output != "" {
		log.Info().Str("path", *output).Int("transactions", len(txs)).Msg("CSV written")
	}

	if *copyCSV {
		if err := clipboard.WriteAll(csv); err != nil {
			log.Fatal().Err(err).Msg("Failed to copy CSV to clipboard")
		}
		log.Info().Msg("CSV copied to clipboard")
	}
}

// writeCSV emits the CSV to a file when path is set, to stdout
// otherwise.
func writeCSV(csv, path string, stdout io.Writer) error {
	if path != "" {
		return os.WriteFile(path, []byte(csv+"\n"), 0o644)
	}
	_, err := fmt.Fprintln(stdout, csv)
	return err
}

func printSummary(txs []extract.Transaction) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tDESCRIPTION\tAMOUNT\tCATEGORY\tNOTES")
	for _, t := range txs {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n", t.Date, t.Description, t.Amount, t.Category, t.Notes)
	}
	w.Flush()

	fmt.Printf("\n%d transactions, net total %.2f\n", len(txs), extract.NetTotal(txs))
}
