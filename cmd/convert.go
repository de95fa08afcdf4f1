package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/places-geojson/internal/bookmark"
	"github.com/sells-group/places-geojson/internal/config"
	"github.com/sells-group/places-geojson/internal/cost"
	"github.com/sells-group/places-geojson/internal/export"
	"github.com/sells-group/places-geojson/internal/feature"
	"github.com/sells-group/places-geojson/internal/pipeline"
)

const (
	formatGeoJSON   = "geojson"
	formatShapefile = "shapefile"
)

var (
	convertInput          string
	convertOutput         string
	convertConcurrency    int
	convertSkipUnresolved bool
	convertEncoding       string
	convertIndent         bool
	convertFormat         string
	convertDryRun         bool
)

// convertOptions are the per-invocation settings of convert that are not in config.
type convertOptions struct {
	Input  string
	Output string
	Format string
	Indent bool
	DryRun bool
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a saved-places CSV into a GeoJSON FeatureCollection",
	Long: `Reads a saved-places CSV export and writes one GeoJSON Point feature per row,
in row order. Any row that cannot be resolved aborts the run and nothing is written.

Examples:
  # stdin to stdout
  GOOGLE_API_KEY=... places-geojson convert < saved.csv > saved.geojson

  # show extracted place IDs without calling the API
  places-geojson convert --input saved.csv --dry-run

  # parallel lookups, shapefile output
  places-geojson convert --input saved.csv --concurrency 4 --format shapefile --output saved`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		applyConvertFlags(cmd, cfg)
		return runConvert(cmd.Context(), cfg, convertOptions{
			Input:  convertInput,
			Output: convertOutput,
			Format: convertFormat,
			Indent: convertIndent,
			DryRun: convertDryRun,
		}, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertInput, "input", "i", "", "CSV file to read (default: stdin)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "file to write (default: stdout; base path for shapefile)")
	convertCmd.Flags().IntVar(&convertConcurrency, "concurrency", 1, "max concurrent place lookups")
	convertCmd.Flags().BoolVar(&convertSkipUnresolved, "skip-unresolved", false, "skip rows without a place id instead of failing")
	convertCmd.Flags().StringVar(&convertEncoding, "encoding", "", "input character encoding (default from config: utf-8)")
	convertCmd.Flags().BoolVar(&convertIndent, "indent", false, "indent GeoJSON output")
	convertCmd.Flags().StringVar(&convertFormat, "format", formatGeoJSON, "output format: geojson or shapefile")
	convertCmd.Flags().BoolVar(&convertDryRun, "dry-run", false, "print extracted place ids as JSON, skip lookups")
	rootCmd.AddCommand(convertCmd)
}

// applyConvertFlags lets explicitly set flags override config values.
func applyConvertFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("concurrency") {
		c.Pipeline.Concurrency = convertConcurrency
	}
	if flags.Changed("skip-unresolved") {
		c.Pipeline.SkipUnresolved = convertSkipUnresolved
	}
	if flags.Changed("encoding") {
		c.Input.Encoding = convertEncoding
	}
}

func runConvert(ctx context.Context, c *config.Config, opts convertOptions, stdin io.Reader, stdout io.Writer) error {
	switch opts.Format {
	case formatGeoJSON:
	case formatShapefile:
		if opts.Output == "" || opts.Output == "-" {
			return eris.New("convert: --output base path is required for shapefile format")
		}
	default:
		return eris.Errorf("convert: unknown format %q", opts.Format)
	}

	if !opts.DryRun {
		if err := c.Validate(); err != nil {
			return err
		}
	}

	in := stdin
	if opts.Input != "" && opts.Input != "-" {
		f, err := os.Open(opts.Input)
		if err != nil {
			return eris.Wrap(err, "convert: open input")
		}
		defer f.Close()
		in = f
	}

	records, err := bookmark.Read(ctx, in, bookmark.ReadOptions{Encoding: c.Input.Encoding})
	if err != nil {
		return err
	}
	zap.L().Info("convert: parsed csv", zap.Int("records", len(records)))

	calc := cost.NewCalculator(cost.Rates{
		Places: cost.PlacesRate{DetailsPer1K: c.Pricing.PlacesDetailsPer1K},
	})

	if opts.DryRun {
		plan := pipeline.Plan(records)
		lookups := pipeline.LookupCount(plan)
		zap.L().Info("convert: dry run",
			zap.Int("lookups", lookups),
			zap.Float64("estimated_cost_usd", calc.PlaceDetails(lookups)),
		)
		return writeTo(opts.Output, stdout, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		})
	}

	p := pipeline.New(newPlacesClient(c.Google),
		pipeline.WithConcurrency(c.Pipeline.Concurrency),
		pipeline.WithSkipUnresolved(c.Pipeline.SkipUnresolved),
	)
	res, err := p.Run(ctx, records)
	if err != nil {
		return err
	}
	zap.L().Info("convert: lookups complete",
		zap.String("run_id", res.RunID),
		zap.Int("lookups", res.Lookups),
		zap.Float64("cost_usd", calc.PlaceDetails(res.Lookups)),
	)

	if opts.Format == formatShapefile {
		if err := export.WriteShapefile(opts.Output, res.Collection); err != nil {
			return err
		}
		zap.L().Info("convert: shapefile written", zap.String("path", export.ShapefilePath(opts.Output)))
		return nil
	}

	return writeTo(opts.Output, stdout, func(w io.Writer) error {
		return feature.Encode(w, res.Collection, opts.Indent)
	})
}

// writeTo renders into memory first so a failed render never leaves a partial file.
func writeTo(path string, stdout io.Writer, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}

	if path == "" || path == "-" {
		_, err := stdout.Write(buf.Bytes())
		return eris.Wrap(err, "convert: write stdout")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return eris.Wrap(err, "convert: write output")
	}
	return nil
}
