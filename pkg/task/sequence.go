package task

// Sequence is an owned, ordered collection of tasks paired with relative
// weights, used to drive multi-step tasks such as helpers.SerialTask. A
// Sequence owns the tasks appended to it in the sense that nothing else in
// this package will run them concurrently with another scope, but Go's
// garbage collector (not the Sequence) is responsible for their lifetime.
type Sequence struct {
	tasks   []Task
	weights WeightSequence
}

// NewSequence returns an empty Sequence.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Append adds a task to the end of the sequence with the given weight. A
// weight of 1.0 is the default if callers don't care about relative
// proportions.
func (s *Sequence) Append(t Task, weight float64) {
	s.tasks = append(s.tasks, t)
	s.weights.Append(weight)
}

// RemoveAt removes the task (and its weight) at index, if in range.
func (s *Sequence) RemoveAt(index int) {
	if index < 0 || index >= len(s.tasks) {
		return
	}
	s.tasks = append(s.tasks[:index], s.tasks[index+1:]...)
	s.weights.RemoveAt(index)
}

// Clear removes every task from the sequence.
func (s *Sequence) Clear() {
	s.tasks = nil
	s.weights = WeightSequence{}
}

// Size returns the number of tasks in the sequence.
func (s *Sequence) Size() int {
	return len(s.tasks)
}

// TaskAt returns the task at index, or nil if out of range.
func (s *Sequence) TaskAt(index int) Task {
	if index < 0 || index >= len(s.tasks) {
		return nil
	}
	return s.tasks[index]
}

// WeightAt returns the raw weight of the task at index.
func (s *Sequence) WeightAt(index int) float64 {
	return s.weights.At(index)
}

// ProportionAt returns the normalised proportion of overall progress that
// the task at index occupies, i.e. WeightAt(index) / total weight.
func (s *Sequence) ProportionAt(index int) float64 {
	return s.weights.NormalisedAt(index)
}
