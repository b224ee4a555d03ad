package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dithermask/pkg/io"
	"github.com/matzehuels/dithermask/pkg/mask"
)

var (
	previewOnStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	previewDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// previewCommand creates the interactive preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var level float64

	cmd := &cobra.Command{
		Use:   "preview [mask.json]",
		Short: "Browse the threshold patterns of a mask in the terminal",
		Long: `Browse the threshold patterns of a mask in the terminal.

Shows the binary pattern at the current level. Left and right step one pixel
at a time, up and down step by a tenth. Masks with more than two axes show
their higher slices stacked below the first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := io.ImportJSON(args[0])
			if err != nil {
				return fmt.Errorf("load mask %s: %w", args[0], err)
			}
			model := NewPreviewModel(args[0], m, level)
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().Float64VarP(&level, "level", "l", 0.5, "initial level in [0, 1]")
	return cmd
}

// =============================================================================
// PreviewModel - Interactive threshold browser
// =============================================================================

// PreviewModel is the bubbletea model for the threshold browser. It tracks
// the number of on pixels rather than the level so that every step changes
// exactly one pixel.
type PreviewModel struct {
	Name   string
	Mask   *mask.Mask
	On     int
	Width  int
	Height int
}

// NewPreviewModel creates a preview starting at level.
func NewPreviewModel(name string, m *mask.Mask, level float64) PreviewModel {
	level = min(max(level, 0), 1)
	return PreviewModel{
		Name:   name,
		Mask:   m,
		On:     m.Cutoff(level),
		Width:  80,
		Height: 24,
	}
}

// Level returns the level that turns on exactly On pixels.
func (m PreviewModel) Level() float64 {
	return float64(m.On) / float64(m.Mask.Len())
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	n := m.Mask.Len()
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l":
			m.On = min(m.On+1, n)
		case "left", "h":
			m.On = max(m.On-1, 0)
		case "up", "k":
			m.On = min(m.On+max(n/10, 1), n)
		case "down", "j":
			m.On = max(m.On-max(n/10, 1), 0)
		case "home", "0":
			m.On = 0
		case "end", "$":
			m.On = n
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
	}
	return m, nil
}

func (m PreviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Name))
	b.WriteString("  ")
	b.WriteString(previewDimStyle.Render(fmt.Sprintf("level %.4f · %d/%d on", m.Level(), m.On, m.Mask.Len())))
	b.WriteString("\n")
	b.WriteString(previewDimStyle.Render("←/→ one pixel  ↑/↓ a tenth  q quit"))
	b.WriteString("\n\n")
	b.WriteString(m.pattern())

	return b.String()
}

// pattern draws the binary pattern, two characters per pixel so that
// pixels come out roughly square, cropped to the window.
func (m PreviewModel) pattern() string {
	w, h := m.Mask.Width(), m.Mask.Height()
	cols := min(w, max(m.Width/2, 1))
	rows := min(h, max(m.Height-4, 1))

	var b strings.Builder
	for y := range rows {
		var line strings.Builder
		for x := range cols {
			if m.Mask.Rank(x+y*w) < m.On {
				line.WriteString(iconOn + iconOn)
			} else {
				line.WriteString(iconOff + iconOff)
			}
		}
		b.WriteString(previewOnStyle.Render(line.String()))
		b.WriteString("\n")
	}
	return b.String()
}
