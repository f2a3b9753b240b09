package road

import (
	"strconv"

	icore "traffic-ca/internal/core"
	"traffic-ca/pkg/core"
)

// Rule184 is the deterministic elementary automaton of single-lane traffic: a
// car advances one cell when the cell ahead is free. It is equivalent to the
// stochastic road with SpeedLimit 2 and no slowdown, and serves as a
// baseline in the viewer. The display scrolls history downwards like Road.
type Rule184 struct {
	cfg     Config
	rule    uint8
	history int
	cur     []uint8
	tmp     []uint8
}

// NewRule184 returns an automaton over a closed road of cfg.Length cells.
// Other Wolfram codes can be passed through rule.
func NewRule184(cfg Config, rule uint8, history int) *Rule184 {
	if history <= 0 {
		history = defaultHistory
	}
	w := max(cfg.Length, 0)
	return &Rule184{cfg: cfg, rule: rule, history: history, cur: make([]uint8, w*history), tmp: make([]uint8, w)}
}

// Name returns the simulation identifier.
func (e *Rule184) Name() string { return "rule" + strconv.Itoa(int(e.rule)) }

// Size returns the display dimensions.
func (e *Rule184) Size() icore.Size { return icore.Size{W: e.cfg.Length, H: e.history} }

// Cells exposes the display buffer, 1 for a car.
func (e *Rule184) Cells() []uint8 { return e.cur }

// Row returns the current occupancy.
func (e *Rule184) Row() []uint8 { return e.cur[:e.cfg.Length] }

// Reset clears the history and places floor(Length*Density) cars at random.
func (e *Rule184) Reset(seed int64) {
	for i := range e.cur {
		e.cur[i] = 0
	}
	st, err := Generate(e.cfg, core.NewRNG(seed), 0)
	if err != nil {
		return
	}
	positions, _ := st.Positions()
	for _, p := range positions {
		e.cur[p] = 1
	}
}

// Load replaces the current row with the occupancy of st.
func (e *Rule184) Load(st *State) {
	for i := 0; i < e.cfg.Length && i < st.Len(); i++ {
		e.cur[i] = 0
		if _, ok := st.At(i); ok {
			e.cur[i] = 1
		}
	}
}

// Step computes the next generation and scrolls history downwards.
func (e *Rule184) Step() {
	w := e.cfg.Length
	if w <= 0 {
		return
	}
	copy(e.tmp, e.cur[:w])
	copy(e.cur[w:], e.cur[:w*(e.history-1)])
	for x := 0; x < w; x++ {
		left := e.tmp[(x-1+w)%w]
		center := e.tmp[x]
		right := e.tmp[(x+1)%w]
		idx := (left << 2) | (center << 1) | right
		e.cur[x] = (e.rule >> idx) & 1
	}
}

// Parameters exposes the automaton settings.
func (e *Rule184) Parameters() icore.ParameterSnapshot {
	snap := e.cfg.Parameters()
	snap.Groups = append(snap.Groups, icore.ParameterGroup{
		Name:   "Automaton",
		Params: []icore.Parameter{{Key: "rule", Label: "Wolfram code", Type: icore.ParamTypeInt, Value: strconv.Itoa(int(e.rule))}},
	})
	return snap
}

func init() {
	icore.Register("rule184", func(cfg map[string]string) icore.Sim {
		c := FromMap(cfg)
		c.SpeedLimit = 1
		c.SlowProbability = 0
		c.ClosedLoop = true
		rule := uint8(184)
		if v, ok := cfg["rule"]; ok {
			if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 && parsed <= 255 {
				rule = uint8(parsed)
			}
		}
		history := defaultHistory
		if v, ok := cfg["history"]; ok {
			if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
				history = parsed
			}
		}
		return NewRule184(c, rule, history)
	})
}
