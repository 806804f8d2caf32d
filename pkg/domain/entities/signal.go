package entities

// Signal is a read-only numeric provider evaluated on demand, such as the
// daily thermal time or the above-ground weight of the plant.
type Signal func() float64

// Constant returns a Signal that always yields value
func Constant(value float64) Signal {
	return func() float64 { return value }
}

// Value evaluates the signal, treating a nil signal as zero
func (s Signal) Value() float64 {
	if s == nil {
		return 0.0
	}
	return s()
}
