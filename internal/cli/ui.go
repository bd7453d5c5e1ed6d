package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/factortree/pkg/render"
	"github.com/matzehuels/factortree/pkg/solver"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan  = lipgloss.Color("36")  // Teal - primary values
	colorGreen = lipgloss.Color("35")  // Green - success
	colorRed   = lipgloss.Color("167") // Soft red - errors
	colorWhite = lipgloss.Color("255") // Bright white - values
	colorDim   = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

// =============================================================================
// Result printers
// =============================================================================

// printEnergies writes an energy/state listing.
func printEnergies(w io.Writer, energies []float64, states [][]int) {
	fmt.Fprintln(w, StyleTitle.Render("Energies"))
	for i, e := range energies {
		line := fmt.Sprintf("  %3d  %s", i, StyleNumber.Render(fmt.Sprintf("%.6g", e)))
		if i < len(states) {
			line += "  " + StyleDim.Render(stateString(states[i]))
		}
		fmt.Fprintln(w, line)
	}
}

// printMarginals writes a marginal listing.
func printMarginals(w io.Writer, marginals []solver.Marginal) {
	fmt.Fprintln(w, StyleTitle.Render("Marginals"))
	for _, m := range marginals {
		scope := make([]string, len(m.Scope))
		for i, v := range m.Scope {
			scope[i] = fmt.Sprintf("x%d", v)
		}
		vals := make([]string, len(m.Values))
		for i, p := range m.Values {
			vals[i] = fmt.Sprintf("%.4f", p)
		}
		fmt.Fprintf(w, "  %-12s %s\n",
			StyleValue.Render(strings.Join(scope, ",")),
			StyleNumber.Render(strings.Join(vals, " ")))
	}
}

// printOrder writes an elimination order with clamped-variable info.
func printOrder(w io.Writer, order []int, numVars int) {
	fmt.Fprintln(w, StyleTitle.Render("Elimination order"))
	fmt.Fprintf(w, "  %s\n", StyleValue.Render(stateString(order)))
	if clamped := numVars - len(order); clamped > 0 {
		fmt.Fprintf(w, "  %s\n", StyleDim.Render(fmt.Sprintf("%d variable(s) clamped", clamped)))
	}
}

// printStats writes decomposition statistics.
func printStats(w io.Writer, stats render.Stats) {
	fmt.Fprintln(w, StyleTitle.Render("Tree decomposition"))
	fmt.Fprintf(w, "  nodes      %s\n", StyleNumber.Render(fmt.Sprintf("%d", stats.Nodes)))
	fmt.Fprintf(w, "  roots      %s\n", StyleNumber.Render(fmt.Sprintf("%d", stats.Roots)))
	fmt.Fprintf(w, "  clamped    %s\n", StyleValue.Render(stateString(stats.Clamped)))
	fmt.Fprintf(w, "  complexity %s\n", StyleNumber.Render(fmt.Sprintf("%.4g", stats.Complexity)))
}

func stateString(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprintf("%d", x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
