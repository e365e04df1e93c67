// Package sim plays a scenario against the budget manager through the host
// message server, the way a running city would.
package sim

import (
	"custombudget/internal/ledger"
	"custombudget/internal/ledger/memory"
	"custombudget/internal/population"
)

// City is a city session backed by the in-memory ledger.
type City struct {
	ledger *memory.Simulator
	stats  *population.Counts
	region population.Cities
	x, z   int32
}

func NewCity(stats *population.Counts, region population.Cities, x, z int32) *City {
	if stats == nil {
		stats = &population.Counts{}
	}
	return &City{ledger: memory.New(), stats: stats, region: region, x: x, z: z}
}

func (c *City) Budget() ledger.BudgetSimulator { return c.ledger }

func (c *City) Stats() population.CityStats { return c.stats }

func (c *City) Region() population.Region { return c.region }

func (c *City) Location() (int32, int32) { return c.x, c.z }

// Ledger exposes the in-memory ledger for reports.
func (c *City) Ledger() *memory.Simulator { return c.ledger }

// Close discards the ledger, as closing the city in the host would.
func (c *City) Close() {
	c.ledger.Reset()
}

// SetPopulation replaces the live city statistics. The regional totals are
// captured at city init and do not change.
func (c *City) SetPopulation(stats *population.Counts) {
	*c.stats = *stats
}
