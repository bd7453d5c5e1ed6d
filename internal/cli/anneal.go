package cli

import (
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/factortree/pkg/anneal"
	"github.com/matzehuels/factortree/pkg/model"
)

func newAnnealCmd() *cobra.Command {
	var (
		reads    int
		sweeps   int
		betaMin  float64
		betaMax  float64
		seed     int64
		noTUI    bool
		asJSON   bool
		bestOnly bool
	)

	cmd := &cobra.Command{
		Use:   "anneal <problem.json>",
		Short: "Simulated annealing over an Ising problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			h, couplers, err := loadIsingTerms(args[0])
			if err != nil {
				return err
			}

			opts := anneal.Options{
				NumReads:  reads,
				NumSweeps: sweeps,
				BetaMin:   betaMin,
				BetaMax:   betaMax,
				Seed:      seed,
				Interrupt: func() bool { return ctx.Err() != nil },
			}

			var result *anneal.Result
			if noTUI || asJSON {
				track := newProgress(logger)
				result, err = anneal.Run(h, couplers, opts)
				if err != nil {
					return err
				}
				track.done(fmt.Sprintf("Annealed %d reads", len(result.Energies)))
			} else {
				result, err = runAnnealTUI(h, couplers, opts)
				if err != nil {
					return err
				}
			}

			if bestOnly && len(result.Energies) > 1 {
				result.Energies = result.Energies[:1]
				result.States = result.States[:1]
			}
			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"energies": result.Energies,
					"states":   result.States,
				})
			}
			printEnergies(os.Stdout, result.Energies, result.States)
			return nil
		},
	}

	cmd.Flags().IntVar(&reads, "reads", 10, "number of annealing restarts")
	cmd.Flags().IntVar(&sweeps, "sweeps", 1000, "sweeps per read")
	cmd.Flags().Float64Var(&betaMin, "beta-min", 0, "hot inverse temperature (0: automatic)")
	cmd.Flags().Float64Var(&betaMax, "beta-max", 0, "cold inverse temperature (0: automatic)")
	cmd.Flags().Int64Var(&seed, "seed", -1, "random seed (negative for time-based)")
	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "disable the live progress view")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit results as JSON")
	cmd.Flags().BoolVar(&bestOnly, "best", false, "print only the best read")
	return cmd
}

// =============================================================================
// Live progress view
// =============================================================================

// annealProgressMsg reports one completed read.
type annealProgressMsg struct {
	read int
	best float64
}

// annealDoneMsg carries the final result (or error) into the model.
type annealDoneMsg struct {
	result *anneal.Result
	err    error
}

// annealModel is the bubbletea model showing annealing progress.
type annealModel struct {
	total   int
	read    int
	best    float64
	haveAny bool
	done    *annealDoneMsg
}

func (m annealModel) Init() tea.Cmd { return nil }

func (m annealModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case annealProgressMsg:
		m.read = msg.read + 1
		m.best = msg.best
		m.haveAny = true
	case annealDoneMsg:
		m.done = &msg
		return m, tea.Quit
	}
	return m, nil
}

func (m annealModel) View() string {
	if m.done != nil {
		return ""
	}
	best := "-"
	if m.haveAny {
		best = fmt.Sprintf("%.6g", m.best)
	}
	return fmt.Sprintf("%s\n%s\n",
		StyleTitle.Render("Annealing"),
		StyleDim.Render(fmt.Sprintf("read %d/%d  best energy %s  (q to stop)", m.read, m.total, best)))
}

// runAnnealTUI runs the annealer behind a live progress view.
func runAnnealTUI(h []float64, couplers []model.Coupler, opts anneal.Options) (*anneal.Result, error) {
	prog := tea.NewProgram(annealModel{total: opts.NumReads}, tea.WithOutput(os.Stderr))

	userProgress := opts.Progress
	opts.Progress = func(read int, best float64) {
		prog.Send(annealProgressMsg{read: read, best: best})
		if userProgress != nil {
			userProgress(read, best)
		}
	}

	go func() {
		result, err := anneal.Run(h, couplers, opts)
		prog.Send(annealDoneMsg{result: result, err: err})
	}()

	final, err := prog.Run()
	if err != nil {
		return nil, err
	}
	m := final.(annealModel)
	if m.done == nil {
		// The user quit the view before the run finished; the run keeps
		// no partial state worth returning.
		return &anneal.Result{}, nil
	}
	return m.done.result, m.done.err
}
