package bluenoise

// Mode selects what Locate searches for.
type Mode int

const (
	// Tightest finds the occupied pixel with the highest density.
	Tightest Mode = iota
	// Voidest finds the empty pixel with the lowest density.
	Voidest
)

// String returns the mode name.
func (m Mode) String() string {
	if m == Tightest {
		return "tightest"
	}
	return "voidest"
}

// Locate returns the index of the tightest cluster or the largest void of a
// pattern, given its density field. Only pixels matching the mode's occupancy
// are candidates: occupied pixels for Tightest, empty pixels for Voidest.
//
// Ties resolve to the lowest linear index: a later candidate replaces the
// current one only when its density is strictly better. Locate returns -1
// when no pixel is a candidate.
func Locate(state []bool, density []float64, mode Mode) int {
	occupied := mode == Tightest
	best := -1
	var val float64
	for i, on := range state {
		if on != occupied {
			continue
		}
		v := density[i]
		switch {
		case best < 0:
			best, val = i, v
		case occupied && v > val:
			best, val = i, v
		case !occupied && v < val:
			best, val = i, v
		}
	}
	return best
}
