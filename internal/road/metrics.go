package road

// MeanSpeed returns the average speed of the cars on the road, or 0 when it
// is empty.
func MeanSpeed(st *State) float64 {
	total, cars := 0, 0
	for _, v := range st.cells {
		if v == Empty {
			continue
		}
		total += v
		cars++
	}
	if cars == 0 {
		return 0
	}
	return float64(total) / float64(cars)
}

// Occupancy returns the fraction of occupied cells.
func Occupancy(st *State) float64 {
	if st.Len() == 0 {
		return 0
	}
	return float64(st.CarCount()) / float64(st.Len())
}

// StoppedFraction returns the fraction of cars standing still.
func StoppedFraction(st *State) float64 {
	stopped, cars := 0, 0
	for _, v := range st.cells {
		if v == Empty {
			continue
		}
		cars++
		if v == 0 {
			stopped++
		}
	}
	if cars == 0 {
		return 0
	}
	return float64(stopped) / float64(cars)
}
