package simulation

import (
	"errors"
	"fmt"

	"github.com/dreamware/hyperpart/internal/balance"
)

// DefaultNodeCapacity is the uniform per-node block capacity used when no
// explicit capacity vector is configured.
const DefaultNodeCapacity = 16

// Config enumerates every option the engine accepts, validated at
// construction. Zero values mean "use the default" for the numeric knobs
// that have one.
type Config struct {
	// NumNodes is the number of storage nodes, named N1..Nn. Required.
	NumNodes int

	// ReplicationFactor is the target replica count per unique block.
	// Required. Values above NumNodes are legal; placement caps at the node
	// count and records degraded replication.
	ReplicationFactor int

	// Capacities optionally gives each node its own block capacity.
	// When set its length must equal NumNodes; when empty every node gets
	// DefaultNodeCapacity. Heterogeneous capacities switch variance and
	// utilization computations to capacity-normalized ratios.
	Capacities []int

	// RebalanceThreshold is the variance at or above which a step triggers
	// rebalancing. Zero selects balance.DefaultThreshold; a negative value
	// disables the gate entirely, so every step rebalances while improving
	// moves exist. Heterogeneous clusters compare ratio variances and want
	// a much smaller positive value.
	RebalanceThreshold float64

	// MaxRebalanceMoves bounds block moves per step.
	// Defaults to balance.DefaultMaxMoves.
	MaxRebalanceMoves int

	// Seed initializes the simulation's random source. Runs with equal
	// seeds and scripts are identical.
	Seed int64
}

func (c Config) withDefaults() Config {
	if c.RebalanceThreshold == 0 {
		c.RebalanceThreshold = balance.DefaultThreshold
	}
	if c.MaxRebalanceMoves == 0 {
		c.MaxRebalanceMoves = balance.DefaultMaxMoves
	}
	return c
}

func (c Config) validate() error {
	if c.NumNodes <= 0 {
		return errors.New("config: NumNodes must be positive")
	}
	if c.ReplicationFactor <= 0 {
		return errors.New("config: ReplicationFactor must be positive")
	}
	if len(c.Capacities) != 0 && len(c.Capacities) != c.NumNodes {
		return fmt.Errorf("config: %d capacities for %d nodes", len(c.Capacities), c.NumNodes)
	}
	for i, capacity := range c.Capacities {
		if capacity < 0 {
			return fmt.Errorf("config: negative capacity %d for node %d", capacity, i+1)
		}
	}
	if c.MaxRebalanceMoves < 0 {
		return errors.New("config: MaxRebalanceMoves must not be negative")
	}
	return nil
}
