package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/factortree/pkg/model"
	"github.com/matzehuels/factortree/pkg/solver"
)

func newOptimizeCmd(cfg *Config) *cobra.Command {
	var (
		orderArg      string
		initStateArg  string
		maxComplexity float64
		maxSolutions  int
		maximize      bool
		beta          float64
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "optimize <problem.json>",
		Short: "Find the k lowest-energy configurations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			if maxComplexity == 0 {
				maxComplexity = cfg.MaxComplexity
			}

			// Adapter tables encode -beta*E; minimising the energy means
			// minimising the negated table sum, i.e. beta = -1.
			loadBeta := beta
			if loadBeta == 0 {
				loadBeta = -1
			}
			p, err := loadProblem(args[0], loadBeta)
			if err != nil {
				return err
			}
			elim, err := resolveOrderArg(ctx, cfg, p, orderArg)
			if err != nil {
				return err
			}
			initState, err := parseIntList(initStateArg)
			if err != nil {
				return err
			}

			track := newProgress(logger)
			result, err := solver.Optimize(ctx, p.Specs, solver.OptimizeOptions{
				VarOrder:      elim,
				MaxComplexity: maxComplexity,
				MaxSolutions:  maxSolutions,
				InitState:     initState,
				MinVars:       p.MinVars,
				Maximize:      maximize,
			})
			if err != nil {
				return err
			}
			track.done(fmt.Sprintf("Optimized, best energy %.6g", result.Energies[0]))

			states := result.States
			if p.Binary {
				states = model.States(states, p.Vartype)
			}
			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"energies": result.Energies,
					"states":   states,
				})
			}
			printEnergies(os.Stdout, result.Energies, states)
			return nil
		},
	}

	cmd.Flags().StringVar(&orderArg, "order", "", "comma-separated elimination order (default: greedy)")
	cmd.Flags().StringVar(&initStateArg, "init-state", "", "comma-separated clamped-variable values")
	cmd.Flags().Float64Var(&maxComplexity, "max-complexity", 0, "decomposition complexity budget")
	cmd.Flags().IntVar(&maxSolutions, "max-solutions", 1, "number of best assignments to return (0: optimum only)")
	cmd.Flags().BoolVar(&maximize, "maximize", false, "return the largest energies instead")
	cmd.Flags().Float64Var(&beta, "beta", 0, "inverse temperature applied by model adapters")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit results as JSON")
	return cmd
}
