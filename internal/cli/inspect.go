package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dithermask/pkg/io"
	"github.com/matzehuels/dithermask/pkg/mask"
)

// inspectLevels are the rows of the level table.
var inspectLevels = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 0.75, 0.9}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [mask.json]",
		Short: "Show statistics of a mask file",
		Long: `Show statistics of a mask file.

Prints the grid, the value range and whether the ranks form a permutation,
followed by the number of pixels each threshold level turns on.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := io.ImportJSON(args[0])
			if err != nil {
				return fmt.Errorf("load mask %s: %w", args[0], err)
			}
			printInspect(args[0], m)
			return nil
		},
	}
}

func printInspect(path string, m *mask.Mask) {
	s := m.Stats()

	fmt.Println(StyleTitle.Render(path))
	printKeyValue("Dims", formatDims(m.Dims))
	printKeyValue("Pixels", strconv.Itoa(m.Len()))
	printKeyValue("Range", fmt.Sprintf("%.6f .. %.6f", s.Min, s.Max))
	printKeyValue("Mean", fmt.Sprintf("%.6f", s.Mean))
	if dup := duplicateRanks(m); dup == 0 {
		printKeyValue("Ranks", StyleSuccess.Render("unique"))
	} else {
		printWarning("%d pixels share a rank with another pixel", dup)
	}
	printNewline()
	fmt.Println(levelTable(m).Render())
}

// duplicateRanks counts pixels whose rank was already taken.
func duplicateRanks(m *mask.Mask) int {
	seen := make([]bool, m.Len())
	dup := 0
	for i := range m.Len() {
		r := m.Rank(i)
		if r < 0 || r >= len(seen) || seen[r] {
			dup++
			continue
		}
		seen[r] = true
	}
	return dup
}

func levelTable(m *mask.Mask) *table.Table {
	rows := make([][]string, len(inspectLevels))
	for i, level := range inspectLevels {
		on := m.Cutoff(level)
		rows[i] = []string{
			strconv.FormatFloat(level, 'f', -1, 64),
			strconv.Itoa(on),
			fmt.Sprintf("%.2f%%", 100*float64(on)/float64(m.Len())),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Level", "On", "Share").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return cellStyle.Foreground(colorCyan)
			}
			return cellStyle.Foreground(colorWhite)
		})
}
