package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theapemachine/qgate"
)

var sampleFlags struct {
	qubits  int
	rows    int
	shots   int
	seed    uint64
	retries int
	breaker int
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Evaluate the sampler head over random parameter rows",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, metrics, err := newDispatcher(cmd, sampleFlags.seed)
		if err != nil {
			return err
		}
		defer d.Close()

		program, params, err := qgate.BuildSampler(sampleFlags.qubits)
		if err != nil {
			return err
		}

		rng := newRand(sampleFlags.seed)
		rows := make([][]float64, sampleFlags.rows)
		for i := range rows {
			rows[i] = randomAngles(rng, len(params))
		}

		pool := qgate.NewQ(cmd.Context(), cfg.Workers, cfg, metrics)
		defer pool.Close()

		var opts []qgate.TaskOption
		if sampleFlags.retries > 1 {
			opts = append(opts, qgate.WithRetry(sampleFlags.retries, &qgate.ExponentialBackoff{
				Initial: 100 * time.Millisecond,
				Max:     2 * time.Second,
			}))
		}

		if sampleFlags.breaker > 0 {
			opts = append(opts, qgate.WithCircuitBreaker("qpu", sampleFlags.breaker, 30*time.Second))
		}

		results, err := qgate.NewBatch(d, pool, opts...).Run(cmd.Context(), program, params, rows, sampleFlags.shots)
		if err != nil {
			return err
		}

		logger.Info("sample complete", zap.Int("rows", len(results)), zap.Any("metrics", metrics.ExportMetrics()))

		expectations := make([]float64, len(results))
		for i, r := range results {
			expectations[i] = r.Expectation
		}

		return writeJSON(cmd.OutOrStdout(), expectations)
	},
}

func init() {
	sampleCmd.Flags().IntVar(&sampleFlags.qubits, "qubits", 4, "Number of qubits")
	sampleCmd.Flags().IntVar(&sampleFlags.rows, "rows", 8, "Parameter rows to evaluate")
	sampleCmd.Flags().IntVar(&sampleFlags.shots, "shots", 500, "Shots per row")
	sampleCmd.Flags().Uint64Var(&sampleFlags.seed, "seed", 1, "Seed for rows and the local simulator")
	sampleCmd.Flags().IntVar(&sampleFlags.retries, "retries", 1, "Attempts per row on transport errors")
	sampleCmd.Flags().IntVar(&sampleFlags.breaker, "breaker", 0, "Failures before rows stop reaching the executor (0 disables)")
}
