package ui

import (
	"fmt"
	"strings"

	"traffic-ca/internal/core"
	"traffic-ca/internal/road"
)

type roadStats interface {
	Tick() int
	State() *road.State
	LastStats() road.StepStats
}

// StatsText renders the overlay lines for a simulation. Sims that expose
// road statistics get tick, car count, mean speed and flow; every
// ParameterProvider also lists its parameters.
func StatsText(sim core.Sim) string {
	var b strings.Builder
	b.WriteString(sim.Name())
	b.WriteByte('\n')
	if rs, ok := sim.(roadStats); ok && rs.State() != nil {
		st := rs.State()
		stats := rs.LastStats()
		fmt.Fprintf(&b, "tick %d  cars %d\n", rs.Tick(), st.CarCount())
		fmt.Fprintf(&b, "mean speed %.2f  stopped %.0f%%\n", road.MeanSpeed(st), 100*road.StoppedFraction(st))
		fmt.Fprintf(&b, "flow %d  slowed %d\n", stats.Flow, stats.Slowed)
	}
	if provider, ok := sim.(core.ParameterProvider); ok {
		for _, group := range provider.Parameters().Groups {
			b.WriteString("[" + group.Name + "]")
			for _, p := range group.Params {
				fmt.Fprintf(&b, " %s=%s", p.Key, p.Value)
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}
