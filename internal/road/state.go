package road

import (
	"fmt"
	"slices"
)

// Empty marks a cell without a car.
const Empty = -1

// State is the occupancy of a road: one entry per cell, either Empty or the
// speed of the car occupying it.
type State struct {
	cells []int
}

// NewState returns an empty road of the given length.
func NewState(length int) *State {
	if length < 0 {
		length = 0
	}
	cells := make([]int, length)
	for i := range cells {
		cells[i] = Empty
	}
	return &State{cells: cells}
}

// StateFromCells rebuilds a state from a raw cell slice, e.g. one read back
// from storage. The slice is copied.
func StateFromCells(cells []int) (*State, error) {
	for i, v := range cells {
		if v < Empty {
			return nil, fmt.Errorf("cell %d holds invalid value %d", i, v)
		}
	}
	return &State{cells: slices.Clone(cells)}, nil
}

// Len returns the number of cells.
func (s *State) Len() int { return len(s.cells) }

// Cells exposes the backing slice. Callers must keep values >= Empty.
func (s *State) Cells() []int { return s.cells }

// At returns the speed of the car in cell i and whether the cell is occupied.
func (s *State) At(i int) (int, bool) {
	if i < 0 || i >= len(s.cells) || s.cells[i] == Empty {
		return 0, false
	}
	return s.cells[i], true
}

// Place puts a car with the given speed into cell i, replacing any car there.
func (s *State) Place(i, speed int) {
	if speed < 0 {
		speed = 0
	}
	s.cells[i] = speed
}

// Clear empties cell i.
func (s *State) Clear(i int) { s.cells[i] = Empty }

// CarCount returns the number of occupied cells.
func (s *State) CarCount() int {
	n := 0
	for _, v := range s.cells {
		if v != Empty {
			n++
		}
	}
	return n
}

// Positions returns the occupied cell indices and their speeds, in road order.
func (s *State) Positions() (positions, speeds []int) {
	for i, v := range s.cells {
		if v == Empty {
			continue
		}
		positions = append(positions, i)
		speeds = append(speeds, v)
	}
	return positions, speeds
}

// Clone returns an independent copy.
func (s *State) Clone() *State {
	return &State{cells: slices.Clone(s.cells)}
}

// Equal reports whether both states hold the same cars at the same speeds.
func (s *State) Equal(o *State) bool {
	if s == nil || o == nil {
		return s == o
	}
	return slices.Equal(s.cells, o.cells)
}

// String renders the road as one character per cell: '.' for empty, the
// speed digit otherwise ('+' above 9).
func (s *State) String() string {
	b := make([]byte, len(s.cells))
	for i, v := range s.cells {
		switch {
		case v == Empty:
			b[i] = '.'
		case v > 9:
			b[i] = '+'
		default:
			b[i] = byte('0' + v)
		}
	}
	return string(b)
}
