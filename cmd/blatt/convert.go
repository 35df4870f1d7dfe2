package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blattlab/blatt/internal/diag"
	"github.com/blattlab/blatt/internal/export"
	"github.com/blattlab/blatt/internal/pagexml"
)

var (
	convertLinebreaks bool
	convertTSV        bool
)

var convertCmd = &cobra.Command{
	Use:   "convert PAGE_DIR TEXT_DIR",
	Short: "Convert PAGE XML files to plain-text files",
	Long: `Convert reads every PAGE XML file in PAGE_DIR and writes a plain-text
file per page into TEXT_DIR. By default soft hyphens at line ends are
resolved and the page becomes continuous text; with --linebreak the
original line structure is kept. With --tsv a per-line TSV dump (text,
region id, line id, baseline) is written instead.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		pageDir, textDir := args[0], args[1]

		paths, err := pagexml.Files(pageDir)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no PAGE XML files in %s", pageDir)
		}
		if err := os.MkdirAll(textDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}

		diags := diag.NewCollector(log)
		for _, path := range paths {
			page, err := pagexml.ReadFile(path, diags)
			if err != nil {
				return err
			}
			stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			if convertTSV {
				out, err := os.Create(filepath.Join(textDir, stem+".tsv"))
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				err = export.WriteLinesTSV(out, page)
				out.Close()
				if err != nil {
					return err
				}
				continue
			}
			text := export.PageText(page, convertLinebreaks)
			if err := os.WriteFile(filepath.Join(textDir, stem+".txt"), []byte(text), 0o644); err != nil {
				return fmt.Errorf("write output file: %w", err)
			}
		}
		log.Info("converted pages",
			"count", len(paths), "skipped_lines", len(diags.Items()), "out", textDir)
		return nil
	},
}

func init() {
	convertCmd.Flags().BoolVar(&convertLinebreaks, "linebreak", false,
		"keep line breaks instead of resolving hyphenation")
	convertCmd.Flags().BoolVar(&convertTSV, "tsv", false,
		"write per-line TSV dumps instead of plain text")
}
