package road

import (
	"testing"

	icore "traffic-ca/internal/core"
	"traffic-ca/pkg/core"
)

func TestRule184AdvancesIntoFreeCells(t *testing.T) {
	cfg := Config{Name: "r", Length: 6, SpeedLimit: 1, ClosedLoop: true}
	e := NewRule184(cfg, 184, 3)
	st, err := StateFromCells([]int{0, 0, -1, -1, 0, -1})
	if err != nil {
		t.Fatal(err)
	}
	e.Load(st)
	e.Step()

	want := []uint8{1, 0, 1, 0, 0, 1}
	for i, v := range e.Row() {
		if v != want[i] {
			t.Fatalf("row = %v, want %v", e.Row(), want)
		}
	}
	prev := e.Cells()[6:12]
	for i, v := range []uint8{1, 1, 0, 0, 1, 0} {
		if prev[i] != v {
			t.Fatalf("history row = %v", prev)
		}
	}
}

func TestRule184MatchesDeterministicRoad(t *testing.T) {
	cfg := Config{Name: "r", Length: 80, SpeedLimit: 2, Density: 0.35, ClosedLoop: true}
	st, err := Generate(cfg, core.NewRNG(11), 0)
	if err != nil {
		t.Fatal(err)
	}
	auto := NewRule184(cfg, 184, 2)
	auto.Load(st)
	eng := NewEngine(cfg, core.NewRNG(0))

	for tick := 1; tick <= 100; tick++ {
		eng.Step(st)
		auto.Step()
		for i, v := range auto.Row() {
			_, occupied := st.At(i)
			if occupied != (v == 1) {
				t.Fatalf("tick %d: cell %d differs (road %s)", tick, i, st)
			}
		}
	}
}

func TestRule184Registered(t *testing.T) {
	factory, ok := icore.Sims()["rule184"]
	if !ok {
		t.Fatal("rule184 not registered")
	}
	sim := factory(map[string]string{"length": "50", "density": "0.4", "history": "5"})
	sim.Reset(1)
	if sim.Size().W != 50 || sim.Size().H != 5 {
		t.Fatalf("unexpected size %+v", sim.Size())
	}
	cars := 0
	for _, v := range sim.Cells()[:50] {
		cars += int(v)
	}
	if cars != 20 {
		t.Fatalf("cars = %d, want 20", cars)
	}
	sim.Step()
	after := 0
	for _, v := range sim.Cells()[:50] {
		after += int(v)
	}
	if after != cars {
		t.Fatalf("cars not conserved: %d -> %d", cars, after)
	}
}
