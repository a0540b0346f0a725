package task

// WeightSequence is an ordered sequence of non-negative relative weights,
// used to turn an arbitrary set of tasks into normalised progress
// proportions. It backs Sequence (see sequence.go) but is useful standalone
// wherever a caller wants to divide a [0,1] range into weighted slices.
//
// A zero-value WeightSequence is ready to use.
type WeightSequence struct {
	values []float64
}

// Append adds a weight to the end of the sequence.
func (w *WeightSequence) Append(weight float64) {
	w.values = append(w.values, weight)
}

// InsertAt inserts a weight at the given position, shifting later entries
// along. Out-of-range indices are clamped to [0, Size()].
func (w *WeightSequence) InsertAt(index int, weight float64) {
	index = clampInt(index, 0, len(w.values))
	w.values = append(w.values, 0)
	copy(w.values[index+1:], w.values[index:])
	w.values[index] = weight
}

// SetAt replaces the weight at index, if index is in range.
func (w *WeightSequence) SetAt(index int, weight float64) {
	if index >= 0 && index < len(w.values) {
		w.values[index] = weight
	}
}

// RemoveAt removes the weight at index, if index is in range.
func (w *WeightSequence) RemoveAt(index int) {
	if index < 0 || index >= len(w.values) {
		return
	}
	w.values = append(w.values[:index], w.values[index+1:]...)
}

// Size returns the number of weights in the sequence.
func (w *WeightSequence) Size() int {
	return len(w.values)
}

// At returns the raw weight at index, or 0 if out of range.
func (w *WeightSequence) At(index int) float64 {
	if index < 0 || index >= len(w.values) {
		return 0
	}
	return w.values[index]
}

// TotalWeight returns the sum of every weight in the sequence.
func (w *WeightSequence) TotalWeight() float64 {
	return w.SumRange(0, len(w.values))
}

// SumRange sums count weights starting at start, clamped to the sequence
// bounds.
func (w *WeightSequence) SumRange(start, count int) float64 {
	start = clampInt(start, 0, len(w.values))
	end := clampInt(start+count, 0, len(w.values))

	var total float64
	for i := start; i < end; i++ {
		total += w.values[i]
	}
	return total
}

// NormalisedAt returns w_i / totalWeight, or 0 if the total weight is 0.
func (w *WeightSequence) NormalisedAt(index int) float64 {
	return w.normalise(w.At(index))
}

// PrefixPlusFraction returns sumRange(0, index) + w_index * clamp(frac, 0, 1).
// index is clamped to [0, Size()]; a frac outside [0,1] behaves as the
// nearer bound. It gives the weighted position reached partway through the
// task at index.
func (w *WeightSequence) PrefixPlusFraction(index int, frac float64) float64 {
	index = clampInt(index, 0, len(w.values))
	frac = clampFloat(frac, 0, 1)

	total := w.SumRange(0, index)
	total += w.At(index) * frac
	return total
}

// NormaliseInPlace scales every weight so the total becomes 1. If the total
// weight is 0, every weight is set to 0 (there is no meaningful
// proportional split of an all-zero sequence).
func (w *WeightSequence) NormaliseInPlace() {
	total := w.TotalWeight()
	if total <= 0 {
		for i := range w.values {
			w.values[i] = 0
		}
		return
	}
	for i := range w.values {
		w.values[i] /= total
	}
}

func (w *WeightSequence) normalise(weighted float64) float64 {
	total := w.TotalWeight()
	if total <= 0 {
		return 0
	}
	return weighted / total
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
