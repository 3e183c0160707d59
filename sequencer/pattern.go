package sequencer

// PatternStore is the track × step trigger grid. Every track always has
// exactly StepsPerLoop cells.
type PatternStore struct {
	cells [numTracks][StepsPerLoop]bool
}

func NewPatternStore() *PatternStore {
	return &PatternStore{}
}

// Toggle flips the cell at (t, step) and returns its new value.
func (p *PatternStore) Toggle(t Track, step int) (bool, error) {
	if err := checkTrack(t); err != nil {
		return false, err
	}
	if err := checkStep(step); err != nil {
		return false, err
	}
	p.cells[t][step] = !p.cells[t][step]
	return p.cells[t][step], nil
}

// ClearAll turns every cell off.
func (p *PatternStore) ClearAll() {
	p.cells = [numTracks][StepsPerLoop]bool{}
}

// IsActive reports whether t triggers at step. Out-of-range input is never active.
func (p *PatternStore) IsActive(t Track, step int) bool {
	if !t.Valid() || step < 0 || step >= StepsPerLoop {
		return false
	}
	return p.cells[t][step]
}

// Row returns a copy of the cells for t.
func (p *PatternStore) Row(t Track) [StepsPerLoop]bool {
	if !t.Valid() {
		return [StepsPerLoop]bool{}
	}
	return p.cells[t]
}

// SetRow replaces every cell of t.
func (p *PatternStore) SetRow(t Track, row [StepsPerLoop]bool) error {
	if err := checkTrack(t); err != nil {
		return err
	}
	p.cells[t] = row
	return nil
}

// Empty reports whether no cell is active.
func (p *PatternStore) Empty() bool {
	for t := range p.cells {
		for _, on := range p.cells[t] {
			if on {
				return false
			}
		}
	}
	return true
}
