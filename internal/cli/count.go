package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/factortree/pkg/solver"
)

func newCountCmd(cfg *Config) *cobra.Command {
	var (
		orderArg      string
		initStateArg  string
		maxComplexity float64
		tolerance     float64
		beta          float64
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "count <problem.json>",
		Short: "Count the optima tied within a relative tolerance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if maxComplexity == 0 {
				maxComplexity = cfg.MaxComplexity
			}

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

			result, err := solver.CountOptima(ctx, p.Specs, solver.CountOptions{
				VarOrder:      elim,
				MaxComplexity: maxComplexity,
				Tolerance:     tolerance,
				InitState:     initState,
				MinVars:       p.MinVars,
			})
			if err != nil {
				return err
			}

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(result)
			}
			fmt.Fprintf(os.Stdout, "%s %s  %s %s\n",
				StyleTitle.Render("optimum"), StyleNumber.Render(fmt.Sprintf("%.6g", result.Value)),
				StyleTitle.Render("count"), StyleNumber.Render(fmt.Sprintf("%.0f", result.Count)))
			return nil
		},
	}

	cmd.Flags().StringVar(&orderArg, "order", "", "comma-separated elimination order (default: greedy)")
	cmd.Flags().StringVar(&initStateArg, "init-state", "", "comma-separated clamped-variable values")
	cmd.Flags().Float64Var(&maxComplexity, "max-complexity", 0, "decomposition complexity budget")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "relative tolerance for counting ties")
	cmd.Flags().Float64Var(&beta, "beta", 0, "inverse temperature applied by model adapters")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit results as JSON")
	return cmd
}
