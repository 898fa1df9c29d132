package main

// Run the simulated analysis offline against a local photo:
//   go run ./cmd/analyze ./meal.jpg --seed 7 --delay 0 --json

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"calorievision-backend/internal/analysis"
	"calorievision-backend/internal/catalog"
	"calorievision-backend/internal/shared/storage/db"
	"calorievision-backend/internal/shared/telemetry"
)

type options struct {
	seed      uint64
	delay     time.Duration
	threshold int
	maxBytes  int64
	asJSON    bool
	dbURL     string
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:           "analyze <image-file>",
		Short:         "Estimate the nutrition of a meal photo",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(cmd.Context(), args[0], opts, stdout)
			if err != nil {
				fmt.Fprintln(stderr, userMessage(err))
			}
			return err
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.Uint64Var(&opts.seed, "seed", 0, "random seed for reproducible results (0 = time-seeded)")
	flags.DurationVar(&opts.delay, "delay", analysis.DefaultDelay, "simulated processing delay")
	flags.IntVar(&opts.threshold, "threshold", analysis.DefaultComplexityThreshold, "encoded size at which an image counts as complex")
	flags.Int64Var(&opts.maxBytes, "max-bytes", 10<<20, "largest accepted image in bytes")
	flags.BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	flags.StringVar(&opts.dbURL, "db", "", "optional catalog database URL (postgres or sqlite)")
	return cmd
}

var errNotImage = errors.New("not an image")

func run(ctx context.Context, path string, opts options, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	data, mimeType, err := readImage(path, opts.maxBytes)
	if err != nil {
		return err
	}

	cat, closeDB := loadCatalog(ctx, opts.dbURL)
	defer closeDB()

	an := analysis.NewAnalyzer(cat, analysis.NewRand(opts.seed), opts.threshold, opts.delay)
	res, err := an.Analyze(ctx, analysis.EncodeDataURL(mimeType, data))
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printResult(out, res)
	return nil
}

func readImage(path string, maxBytes int64) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: file is empty", errNotImage)
	}
	if int64(len(data)) > maxBytes {
		return nil, "", fmt.Errorf("%w: larger than %d bytes", errNotImage, maxBytes)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, "", fmt.Errorf("%w: detected %s", errNotImage, mt.String())
	}
	return data, mt.String(), nil
}

func loadCatalog(ctx context.Context, dbURL string) (*catalog.Catalog, func()) {
	if strings.TrimSpace(dbURL) == "" {
		return catalog.Default(), func() {}
	}
	sqlDB, err := db.Connect(ctx, dbURL, db.DefaultMigrateOptions())
	if err != nil {
		telemetry.Error("catalog.fallback", map[string]any{"err": err, "source": "builtin"})
		return catalog.Default(), func() {}
	}
	return catalog.Load(ctx, &catalog.SQLSource{DB: sqlDB}), func() { _ = sqlDB.Close() }
}

func printResult(out io.Writer, res analysis.Result) {
	fmt.Fprintf(out, "%s (confidence %d%%)\n", res.Name, res.Confidence)
	fmt.Fprintf(out, "Portion:     %s\n", res.Portion)
	fmt.Fprintf(out, "Calories:    %d kcal\n", res.Calories)
	fmt.Fprintf(out, "Protein:     %d g (%d%%)\n", res.Protein, res.Macros.ProteinPct)
	fmt.Fprintf(out, "Carbs:       %d g (%d%%)\n", res.Carbs, res.Macros.CarbsPct)
	fmt.Fprintf(out, "Fat:         %d g (%d%%)\n", res.Fat, res.Macros.FatPct)
	fmt.Fprintf(out, "Fiber:       %d g\n", res.Fiber)
	fmt.Fprintf(out, "Ingredients: %s\n", strings.Join(res.Ingredients, ", "))
	fmt.Fprintf(out, "Features:    complexity=%s color=%s items=%d\n",
		res.Features.Complexity, res.Features.ColorProfile, res.Features.EstimatedItemCount)
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, errNotImage):
		return "Choose a photo of your meal (JPEG, PNG, WebP or GIF): " + err.Error()
	case errors.Is(err, os.ErrNotExist):
		return err.Error()
	case errors.Is(err, analysis.ErrAnalysisFailed):
		return analysis.FailureMessage
	default:
		return err.Error()
	}
}
