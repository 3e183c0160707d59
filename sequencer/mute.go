package sequencer

// MuteRegistry holds the set of muted tracks. Muting only affects
// playback; auditioning a track ignores it.
type MuteRegistry struct {
	muted [numTracks]bool
}

func NewMuteRegistry() *MuteRegistry {
	return &MuteRegistry{}
}

// Toggle flips t's membership and returns the new muted state.
func (m *MuteRegistry) Toggle(t Track) bool {
	if !t.Valid() {
		return false
	}
	m.muted[t] = !m.muted[t]
	return m.muted[t]
}

func (m *MuteRegistry) IsMuted(t Track) bool {
	return t.Valid() && m.muted[t]
}

// Set forces t's muted state (used when loading a project).
func (m *MuteRegistry) Set(t Track, muted bool) {
	if t.Valid() {
		m.muted[t] = muted
	}
}
