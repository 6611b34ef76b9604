package stats

import (
	"math"
)

// Descriptor is one row of the statistics table. Quantities that could not
// be computed are NaN.
type Descriptor struct {
	Name   string
	PValue float64

	GoodMean float64
	GoodStd  float64
	GoodN    int
	BadMean  float64
	BadStd   float64
	BadN     int

	Cutoff     float64
	Inflection float64
	B          float64
	C          float64
	Z          float64
	W          float64

	Significant bool
	Selected    bool

	// Valid is false when cutoff, inflection, b, c or z is undefined.
	// Invalid descriptors are never selected.
	Valid   bool
	Invalid string
}

// Table is the ordered statistics table, sorted by ascending p-value.
type Table []Descriptor

// Names returns descriptor names in table order.
func (t Table) Names() []string {
	names := make([]string, len(t))
	for i, d := range t {
		names[i] = d.Name
	}
	return names
}

// Lookup returns the row for name.
func (t Table) Lookup(name string) (Descriptor, bool) {
	for _, d := range t {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Significant returns the rows with p below the cutoff, in table order.
func (t Table) Significant() Table {
	return t.filter(func(d Descriptor) bool { return d.Significant })
}

// Selected returns the rows chosen for the model, in table order.
func (t Table) Selected() Table {
	return t.filter(func(d Descriptor) bool { return d.Selected })
}

// Candidates returns the rows eligible for selection: significant and valid.
func (t Table) Candidates() Table {
	return t.filter(func(d Descriptor) bool { return d.Significant && d.Valid })
}

func (t Table) filter(keep func(Descriptor) bool) Table {
	out := Table{}
	for _, d := range t {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// Clone returns an independent copy.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	return append(Table(nil), t...)
}

// WeightSum returns the sum of the finite weights.
func (t Table) WeightSum() float64 {
	sum := 0.0
	for _, d := range t {
		if !math.IsNaN(d.W) {
			sum += d.W
		}
	}
	return sum
}
