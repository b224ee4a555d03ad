package cli

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	derrors "github.com/matzehuels/dithermask/pkg/errors"
	"github.com/matzehuels/dithermask/pkg/io"
	"github.com/matzehuels/dithermask/pkg/mask"
)

// thresholdCommand creates the threshold command.
func (c *CLI) thresholdCommand() *cobra.Command {
	var (
		level     float64
		output    string
		formatStr string
	)

	cmd := &cobra.Command{
		Use:   "threshold [mask.json]",
		Short: "Write the binary pattern of a mask at one level",
		Long: `Write the binary pattern of a mask at one level.

The pattern turns on the round(level * pixels) lowest-ranked pixels, so the
patterns of one mask are nested: every pixel on at a level stays on at all
higher levels. The input is a mask written by 'generate -f json'.`,
		Example: `  dithermask threshold mask-64x64.json --level 0.25
  dithermask threshold mask.json --level 0.5 -o half.bmp`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runThreshold(args[0], level, output, formatStr)
		},
	}

	cmd.Flags().Float64VarP(&level, "level", "l", 0.5, "share of pixels turned on, in [0, 1]")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>-<percent>.<format>)")
	cmd.Flags().StringVarP(&formatStr, "format", "f", "", "image format: png (default), tiff, bmp; inferred from --output")

	return cmd
}

func (c *CLI) runThreshold(input string, level float64, output, formatStr string) error {
	if err := derrors.ValidateLevel(level); err != nil {
		return err
	}
	format, err := thresholdFormat(formatStr, output)
	if err != nil {
		return err
	}

	m, err := io.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load mask %s: %w", input, err)
	}

	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		output = fmt.Sprintf("%s-%d.%s", base, int(math.Round(level*100)), format.Extension())
	}
	if err := derrors.ValidateOutputPath(output); err != nil {
		return err
	}

	// A binary pattern needs a positive level to select the pattern
	// encoding; level 0 is the all-off image.
	var buf bytes.Buffer
	if level > 0 {
		err = mask.Encode(&buf, m, format, mask.WithLevel(level))
	} else {
		err = mask.Encode(&buf, &mask.Mask{Dims: m.Dims, Values: make([]float64, m.Len())}, format, mask.WithDepth(8))
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Pattern at level %g", level)
	printFile(output)
	printDetail("%d of %d pixels on", m.Cutoff(level), m.Len())
	return nil
}

// thresholdFormat picks the image format from the flag, then the output
// extension, then the default. JSON is not an image format.
func thresholdFormat(flag, output string) (mask.Format, error) {
	name := flag
	if name == "" && output != "" {
		name = strings.TrimPrefix(filepath.Ext(output), ".")
	}
	if name == "" {
		return mask.FormatPNG, nil
	}
	f, err := mask.ParseFormat(name)
	if err != nil {
		return "", err
	}
	if f == mask.FormatJSON {
		return "", derrors.New(derrors.ErrCodeInvalidFormat, "a threshold pattern is an image; use png, tiff or bmp")
	}
	return f, nil
}
