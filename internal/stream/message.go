// Package stream publishes road snapshots to live consumers as they are
// produced. Publication never blocks the simulation on a slow consumer.
package stream

import (
	"traffic-ca/internal/road"
	"traffic-ca/internal/sim"
)

// Message is the JSON payload published for every snapshot.
type Message struct {
	Road      string  `json:"road"`
	RunID     string  `json:"run_id,omitempty"`
	Tick      int     `json:"tick"`
	Cells     []int   `json:"cells"`
	Cars      int     `json:"cars"`
	MeanSpeed float64 `json:"mean_speed"`
	Flow      int     `json:"flow"`
}

// NewMessage builds the payload for a snapshot.
func NewMessage(snap sim.Snapshot) Message {
	msg := Message{
		Road:  snap.Road,
		RunID: snap.RunID,
		Tick:  snap.Tick,
		Flow:  snap.Stats.Flow,
	}
	if snap.State != nil {
		msg.Cells = snap.State.Cells()
		msg.Cars = snap.State.CarCount()
		msg.MeanSpeed = road.MeanSpeed(snap.State)
	}
	return msg
}
