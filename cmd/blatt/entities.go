package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/blattlab/blatt/internal/export"
	"github.com/blattlab/blatt/internal/pagexml"
	"github.com/blattlab/blatt/internal/pipeline"
)

var (
	entitiesOut    string
	entitiesFormat string
)

var entitiesCmd = &cobra.Command{
	Use:   "entities PAGE_DIR",
	Short: "Run the full pipeline and export structured entities",
	Long: `Entities runs the full reconstruction over every PAGE XML file in
PAGE_DIR (column ordering, segmentation, cross-page merging, attribute
extraction) and writes the entity collection with provenance and
diagnostics.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		paths, err := pagexml.Files(args[0])
		if err != nil {
			return err
		}
		res, err := pipeline.New(cfg, log).Run(cmd.Context(), paths)
		if err != nil {
			return err
		}

		var out io.Writer = os.Stdout
		if entitiesOut != "" {
			f, err := os.Create(entitiesOut)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer f.Close()
			out = f
		}
		switch entitiesFormat {
		case "json":
			return export.WriteEntitiesJSON(out, res)
		case "tsv":
			return export.WriteEntitiesTSV(out, res.Entities)
		default:
			return fmt.Errorf("unknown format %q (want json or tsv)", entitiesFormat)
		}
	},
}

func init() {
	entitiesCmd.Flags().StringVarP(&entitiesOut, "out", "o", "", "output file (default: stdout)")
	entitiesCmd.Flags().StringVarP(&entitiesFormat, "format", "f", "json", "output format: json or tsv")
}
