package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"campaigner/internal/format"
	"campaigner/internal/logging"
	"campaigner/internal/plan"
	"campaigner/internal/wiring"
)

var buildFlags struct {
	outDir string
}

var buildCmd = &cobra.Command{
	Use:   "build <plan-file>...",
	Short: "Build campaign documents from plan files",
	Long: `Build one campaign document per plan file. Plans are built concurrently,
each into its own document with its own tether generator, and written to
<out>/<plan-file-base>.json.

Usage:
  campaigner build plans/village.yaml
  campaigner build plans/*.yaml -o out/ --seed 42`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildFlags.outDir, "output", "o", ".", "Output directory for the campaign documents")
}

func runBuild(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(buildFlags.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	b, err := newBuilder()
	if err != nil {
		return err
	}
	log := logging.New("build")

	results := make([]*plan.Result, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.Workers)
	for i, path := range args {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out := outputPath(buildFlags.outDir, path)
			res, err := wiring.Run(b, path, out, cfg.Seed)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			log.Info("wrote campaign", "plan", path, "output", out, "events", res.Document.Len(), "seed", res.Seed)
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for i, res := range results {
		fmt.Fprintf(w, "%s -> %s (seed %d)\n", args[i], outputPath(buildFlags.outDir, args[i]), res.Seed)
		fmt.Fprintln(w, format.Descriptors(res.Summaries, tableMode()))
		if custom := res.Document.CustomEvents(); len(custom) > 0 {
			fmt.Fprintf(w, "Custom events to declare: %s\n", strings.Join(custom, ", "))
		}
		fmt.Fprintln(w)
	}
	return nil
}

func outputPath(dir, planPath string) string {
	base := strings.TrimSuffix(filepath.Base(planPath), filepath.Ext(planPath))
	return filepath.Join(dir, base+".json")
}
