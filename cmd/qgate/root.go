package main

import (
	"encoding/json"
	"io"
	"math"
	"math/rand/v2"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theapemachine/qgate"
)

var (
	configPath string
	debug      bool

	cfg    *qgate.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "qgate",
	Short: "Build and run parameterised quantum circuits",
	Long: `qgate builds parameterised circuits, binds values to them and runs them
either on a local state-vector simulator or, when QPU_GATEWAY_HOST is set,
on a remote gateway.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if debug {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return err
		}

		cfg, err = qgate.LoadConfig(configPath)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable development logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(serveCmd)
}

// newDispatcher builds a dispatcher from the loaded config, seeding the
// simulator from --seed when it was given.
func newDispatcher(cmd *cobra.Command, seed uint64) (*qgate.Dispatcher, *qgate.Metrics, error) {
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}

	metrics := qgate.NewMetrics(nil)
	d, err := qgate.NewDispatcher(cfg, qgate.WithMetrics(metrics))
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("dispatcher ready", zap.String("mode", d.Mode()))

	return d, metrics, nil
}

func randomAngles(rng *rand.Rand, n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = rng.Float64() * math.Pi
	}

	return values
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
