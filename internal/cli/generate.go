package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/dithermask/pkg/bluenoise"
	derrors "github.com/matzehuels/dithermask/pkg/errors"
	"github.com/matzehuels/dithermask/pkg/mask"
	"github.com/matzehuels/dithermask/pkg/pipeline"
)

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	flagOpts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "generate [dims]",
		Short: "Generate a blue-noise threshold mask",
		Long: `Generate a blue-noise threshold mask.

Dims is the grid extent, e.g. 64x64 or 16x16x4. The first axis varies
fastest; 2-D masks are written as images with the first axis horizontal.
Without dims, the value from the config file is used.

Every option not given on the command line comes from the [generate] section
of the config file, then from the built-in defaults. Results are cached, so
asking for another format of the same mask skips the generator.`,
		Example: `  dithermask generate 64x64
  dithermask generate 128x128 --sigma 1.9 -f png,json -o bn128
  dithermask generate 32x32 --level 0.25 -f bmp`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flagOpts.Formats = parseFormats(formatsStr)
			opts, err := c.generateOptions(cmd.Flags(), flagOpts, args)
			if err != nil {
				return err
			}
			return c.runGenerate(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (default: mask-<dims>)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): png (default), tiff, bmp, json (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flagOpts.Refresh, "refresh", false, "regenerate even if the mask is cached")

	cmd.Flags().Float64Var(&flagOpts.Sigma, "sigma", pipeline.DefaultSigma, "Gaussian filter standard deviation in pixels")
	cmd.Flags().Float64Var(&flagOpts.SeedFraction, "seed-fraction", pipeline.DefaultSeedFraction, "share of pixels in the initial pattern (at most 0.5)")
	cmd.Flags().Uint64Var(&flagOpts.Seed, "seed", pipeline.DefaultSeed, "random seed for the initial pattern")
	cmd.Flags().IntVar(&flagOpts.MaxIterations, "max-iterations", 0, "cap on homogenize moves (default: pixel count)")
	cmd.Flags().IntVar(&flagOpts.Depth, "depth", pipeline.DefaultDepth, "grayscale bit depth: 8 or 16")
	cmd.Flags().Float64Var(&flagOpts.Level, "level", 0, "write the binary pattern at this level instead of the mask")

	return cmd
}

// generateOptions layers explicitly set flags over the config file.
func (c *CLI) generateOptions(flags *pflag.FlagSet, flagOpts pipeline.Options, args []string) (pipeline.Options, error) {
	opts, err := c.cfg().Generate.PipelineOptions()
	if err != nil {
		return pipeline.Options{}, err
	}

	if len(args) == 1 {
		dims, err := derrors.ParseDimensions(args[0])
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.Dims = dims
	}
	if len(opts.Dims) == 0 {
		return pipeline.Options{}, derrors.New(derrors.ErrCodeInvalidDimensions, "no dimensions given and none configured")
	}

	if flags.Changed("sigma") {
		opts.Sigma = flagOpts.Sigma
	}
	if flags.Changed("seed-fraction") {
		opts.SeedFraction = flagOpts.SeedFraction
	}
	if flags.Changed("seed") {
		opts.Seed = flagOpts.Seed
	}
	if flags.Changed("max-iterations") {
		opts.MaxIterations = flagOpts.MaxIterations
	}
	if flags.Changed("depth") {
		opts.Depth = flagOpts.Depth
	}
	if flags.Changed("level") {
		opts.Level = flagOpts.Level
	}
	if len(flagOpts.Formats) > 0 {
		opts.Formats = flagOpts.Formats
	}
	opts.Refresh = flagOpts.Refresh

	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// runGenerate runs the pipeline and writes one file per format.
func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	label := formatDims(opts.Dims)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating %s mask...", label))
	opts.Progress = func(phase bluenoise.Phase, done, total int) {
		if phase == bluenoise.PhaseHomogenize {
			spinner.Update(fmt.Sprintf("Generating %s mask (%s, %d moves)...", label, phase, done))
			return
		}
		spinner.Update(fmt.Sprintf("Generating %s mask (%s %d/%d)...", label, phase, done, total))
	}
	spinner.Start()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()
	prog.done("Generated " + label + " mask")

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == "" {
		output = "mask-" + label
	}
	paths, err := writeArtifacts(result, output)
	if err != nil {
		return err
	}

	printSuccess("Mask complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(opts.Dims, result.Stats.Iterations, result.CacheInfo.GenerateHit)
	if result.Stats.Inverted {
		printDetail("Seed pattern was a majority and ran inverted")
	}

	if jsonPath, ok := findFormat(paths, mask.FormatJSON); ok {
		printNewline()
		printNextStep("Preview", appName+" preview "+jsonPath)
	}
	return nil
}

// writeArtifacts writes each artifact to disk and returns the paths in
// format order. With a single format and an output that already carries an
// extension, output is used as-is; otherwise it is a base path.
func writeArtifacts(result *pipeline.Result, output string) ([]string, error) {
	formats := result.SortedFormats()
	single := len(formats) == 1 && filepath.Ext(output) != ""

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := output
		if !single {
			path = output + "." + mask.Format(f).Extension()
		}
		if err := derrors.ValidateOutputPath(path); err != nil {
			return nil, err
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, result.Artifacts[f], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func findFormat(paths []string, f mask.Format) (string, bool) {
	for _, p := range paths {
		if strings.EqualFold(strings.TrimPrefix(filepath.Ext(p), "."), f.Extension()) {
			return p, true
		}
	}
	return "", false
}
