package main

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theapemachine/qgate"
)

var runFlags struct {
	layers int
	qubits int
	shots  int
	seed   uint64
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a QAOA circuit with random angles",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _, err := newDispatcher(cmd, runFlags.seed)
		if err != nil {
			return err
		}
		defer d.Close()

		program, params, err := qgate.BuildQAOA(runFlags.layers, runFlags.qubits)
		if err != nil {
			return err
		}

		if debug {
			logger.Debug("built program", zap.String("instructions", spew.Sdump(program.Instructions())))
		}

		values := randomAngles(newRand(runFlags.seed), len(params))

		result, err := d.Execute(cmd.Context(), program, params, values, runFlags.shots)
		if err != nil {
			return err
		}

		logger.Info("run complete",
			zap.String("mode", d.Mode()),
			zap.Int("instructions", program.Len()),
			zap.Float64("expectation", result.Expectation),
		)

		return writeJSON(cmd.OutOrStdout(), struct {
			Params []string              `json:"params"`
			Values []float64             `json:"values"`
			Result qgate.ExecutionResult `json:"result"`
		}{params, values, result})
	},
}

func init() {
	runCmd.Flags().IntVar(&runFlags.layers, "layers", 2, "QAOA layers")
	runCmd.Flags().IntVar(&runFlags.qubits, "qubits", 4, "Number of qubits")
	runCmd.Flags().IntVar(&runFlags.shots, "shots", 1000, "Shots per execution")
	runCmd.Flags().Uint64Var(&runFlags.seed, "seed", 1, "Seed for angles and the local simulator")
}
