package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/factortree/pkg/descent"
)

func newDescendCmd() *cobra.Command {
	var (
		runs   int
		seed   int64
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "descend <problem.json>",
		Short: "Steepest-descent local search over an Ising problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			h, couplers, err := loadIsingTerms(args[0])
			if err != nil {
				return err
			}

			track := newProgress(logger)
			result, err := descent.Run(h, couplers, descent.Options{
				NumRuns: runs,
				Seed:    seed,
			})
			if err != nil {
				return err
			}
			track.done(fmt.Sprintf("Descended %d runs, best energy %.6g", runs, result.Energies[0]))

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"energies": result.Energies,
					"states":   result.States,
					"steps":    result.Steps,
				})
			}
			printEnergies(os.Stdout, result.Energies, result.States)
			return nil
		},
	}

	cmd.Flags().IntVar(&runs, "runs", 10, "number of descents from random starts")
	cmd.Flags().Int64Var(&seed, "seed", -1, "random seed (negative for time-based)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit results as JSON")
	return cmd
}
