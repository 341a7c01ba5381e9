package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/dreamware/hyperpart/internal/metrics"
	"github.com/dreamware/hyperpart/internal/simulation"
)

// runConfig is the file/env-facing shape of a simulation run. Field names
// follow the engine config; viper matches them case-insensitively.
type runConfig struct {
	NumNodes           int
	ReplicationFactor  int
	Capacities         []int
	RebalanceThreshold float64
	MaxRebalanceMoves  int
	Seed               int64
	Steps              int
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := loadConfig(getenv("HYPERPART_CONFIG", ""))
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	sim, err := simulation.New(simulation.Config{
		NumNodes:           cfg.NumNodes,
		ReplicationFactor:  cfg.ReplicationFactor,
		Capacities:         cfg.Capacities,
		RebalanceThreshold: cfg.RebalanceThreshold,
		MaxRebalanceMoves:  cfg.MaxRebalanceMoves,
		Seed:               cfg.Seed,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create simulation")
	}
	sim.SetLogger(log)

	log.Info().
		Int("nodes", cfg.NumNodes).
		Int("replication_factor", cfg.ReplicationFactor).
		Int("steps", cfg.Steps).
		Int64("seed", cfg.Seed).
		Msg("starting dynamic workload simulation")

	history, err := sim.Run(simulation.DefaultScript(cfg.Steps))
	if err != nil {
		log.Fatal().Err(err).Msg("simulation aborted")
	}

	for _, u := range sim.Utilizations() {
		log.Info().
			Str("node", u.ID).
			Int("stored", u.Stored).
			Int("capacity", u.Capacity).
			Float64("utilization", u.Utilization).
			Msg("node utilization")
	}

	for _, e := range sim.Hypergraph().Edges() {
		log.Info().
			Str("a", e.A).
			Str("b", e.B).
			Int("shared", e.Weight).
			Msg("sharing edge")
	}

	for _, rc := range metrics.TopReplicated(sim.ReplicationCounts(), 5) {
		log.Info().
			Str("block", rc.Fingerprint.Short()).
			Int("replicas", rc.Count).
			Msg("top replicated")
	}

	if len(history) > 0 {
		last := history[len(history)-1]
		log.Info().
			Int("steps", len(history)).
			Float64("variance", last.VarianceAfter).
			Float64("dedup_ratio", last.DedupRatio).
			Float64("space_saved", last.SpaceSavedRatio).
			Msg("simulation finished")
	}
}

// loadConfig reads an optional viper config file on top of the defaults.
func loadConfig(path string) (runConfig, error) {
	viper.SetDefault("numNodes", 3)
	viper.SetDefault("replicationFactor", 2)
	viper.SetDefault("seed", 42)
	viper.SetDefault("steps", 5)

	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return runConfig{}, err
		}
	}

	var cfg runConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return runConfig{}, err
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
