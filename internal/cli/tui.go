package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"github.com/matzehuels/declutter/pkg/geom"
	"github.com/matzehuels/declutter/pkg/pipeline"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// Entity status values shown in the inspector.
const (
	statusSettled    = "settled"
	statusMoved      = "moved"
	statusPinned     = "pinned"
	statusUnresolved = "unresolved"
)

// =============================================================================
// inspect command
// =============================================================================

func (c *CLI) inspectCommand() *cobra.Command {
	var (
		flags solverFlags
		plain bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Browse entities, displacements and status interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.pipelineOptions(cmd, &flags)
			if err != nil {
				return err
			}
			return c.runInspect(cmd.Context(), args[0], opts, flags, plain)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print the table once instead of starting the interactive view")
	addSolverFlags(cmd, &flags)

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input string, opts pipeline.Options, flags solverFlags, plain bool) error {
	format, err := parseFormatFlag(flags.format)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := c.load(ctx, runner, input, format, opts)
	if err != nil {
		return err
	}

	m := NewInspectModel(inspectRows(res))
	if plain {
		m.Height = len(m.Rows)
		m.Cursor = -1
		fmt.Println(m.table())
		printStats(res.Stats, res.CacheInfo.ResolveHit)
		return nil
	}

	_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// =============================================================================
// InspectModel - Interactive entity table
// =============================================================================

// InspectRow is one entity as shown in the inspector.
type InspectRow struct {
	ID     string
	Label  string
	Before orb.Bound
	After  orb.Bound
	Shift  float64
	Status string
}

func inspectRows(res *pipeline.Result) []InspectRow {
	unresolved := make(map[string]bool, len(res.Stats.Unresolved))
	for _, id := range res.Stats.Unresolved {
		unresolved[id] = true
	}

	rows := make([]InspectRow, len(res.Entities))
	for i, after := range res.Entities {
		before := res.Input[i]
		row := InspectRow{
			ID:     after.ID,
			Label:  after.Label,
			Before: before.Bounds,
			After:  after.Bounds,
			Shift:  geom.Length(geom.Offset(before.Bounds, after.Bounds)),
			Status: statusSettled,
		}
		switch {
		case unresolved[after.ID]:
			row.Status = statusUnresolved
		case !after.Movable():
			row.Status = statusPinned
		case row.Shift > 0:
			row.Status = statusMoved
		}
		rows[i] = row
	}
	return rows
}

// InspectModel is the bubbletea model for browsing a resolved document.
type InspectModel struct {
	Rows      []InspectRow
	Cursor    int
	Offset    int
	Height    int
	MovedOnly bool
}

// NewInspectModel creates a new inspector model.
func NewInspectModel(rows []InspectRow) InspectModel {
	return InspectModel{
		Rows:   rows,
		Height: 15,
	}
}

// visible returns the indices of rows passing the current filter.
func (m InspectModel) visible() []int {
	idx := make([]int, 0, len(m.Rows))
	for i, r := range m.Rows {
		if m.MovedOnly && r.Status == statusSettled {
			continue
		}
		idx = append(idx, i)
	}
	return idx
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	n := len(m.visible())
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < n-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			m.Cursor = max(n-1, 0)
			m.Offset = max(n-m.Height, 0)
		case "m":
			m.MovedOnly = !m.MovedOnly
			m.Cursor, m.Offset = 0, 0
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Entities"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  m moved only  q quit"))
	b.WriteString("\n\n")
	b.WriteString(m.table())
	b.WriteString("\n\n")

	n := len(m.visible())
	pos := 0
	if n > 0 {
		pos = m.Cursor + 1
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", pos, n)))
	if m.MovedOnly {
		b.WriteString(listDimStyle.Render("  filter: moved"))
	}

	return b.String()
}

func (m InspectModel) table() string {
	idx := m.visible()
	end := min(m.Offset+m.Height, len(idx))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Rows[idx[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			r.ID,
			r.Label,
			formatBound(r.Before),
			formatBound(r.After),
			formatDistance(r.Shift),
			r.Status,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Label", "Before", "After", "Shift", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			actual := m.Offset + row
			if actual >= len(idx) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if actual == m.Cursor {
				base = base.Bold(true)
			}
			if col == 6 {
				return base.Foreground(statusColor(m.Rows[idx[actual]].Status))
			}
			return base
		}).
		Render()
}

func statusColor(status string) lipgloss.Color {
	switch status {
	case statusMoved:
		return colorYellow
	case statusPinned:
		return colorGray
	case statusUnresolved:
		return colorRed
	}
	return colorGreen
}

func formatBound(b orb.Bound) string {
	return fmt.Sprintf("(%s,%s)-(%s,%s)",
		formatDistance(b.Min[0]), formatDistance(b.Min[1]),
		formatDistance(b.Max[0]), formatDistance(b.Max[1]))
}
