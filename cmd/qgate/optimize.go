package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theapemachine/qgate"
)

var optimizeFlags struct {
	qubits     int
	shots      int
	iterations int
	seed       uint64
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Minimise the readout expectation of a product ansatz",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _, err := newDispatcher(cmd, optimizeFlags.seed)
		if err != nil {
			return err
		}
		defer d.Close()

		program, params, err := qgate.BuildAnsatz(optimizeFlags.qubits)
		if err != nil {
			return err
		}

		obj := qgate.NewObjective(cmd.Context(), d, program, params, optimizeFlags.shots)
		start := randomAngles(newRand(optimizeFlags.seed), len(params))

		best, err := qgate.Minimize(cmd.Context(), obj, start, optimizeFlags.iterations)
		if err != nil {
			return err
		}

		logger.Info("optimize complete",
			zap.Float64("expectation", best.Expectation),
			zap.Int("evaluations", best.Evaluations),
		)

		return writeJSON(cmd.OutOrStdout(), best)
	},
}

func init() {
	optimizeCmd.Flags().IntVar(&optimizeFlags.qubits, "qubits", 2, "Number of qubits")
	optimizeCmd.Flags().IntVar(&optimizeFlags.shots, "shots", 1000, "Shots per evaluation")
	optimizeCmd.Flags().IntVar(&optimizeFlags.iterations, "iterations", 50, "Maximum optimiser iterations")
	optimizeCmd.Flags().Uint64Var(&optimizeFlags.seed, "seed", 1, "Seed for the start point and the local simulator")
}
