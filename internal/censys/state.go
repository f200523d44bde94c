package censys

// RunState is the mutable per-run pipeline state: the set of
// target/address keys already handled and the error latch. A fresh
// RunState must be built for every run; nothing carries over between
// runs. Not safe for concurrent use; the pipeline processes one target
// at a time.
type RunState struct {
	seen    map[string]struct{}
	errored bool
}

func NewRunState() *RunState {
	return &RunState{seen: make(map[string]struct{})}
}

// Once marks key as seen and reports whether this was its first
// sighting. Keys are write-once: a marked key never becomes unmarked.
func (s *RunState) Once(key string) bool {
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// SetErrored latches the run error flag. It is never cleared; once set,
// the module ignores every further event for the rest of the run.
func (s *RunState) SetErrored() {
	s.errored = true
}

func (s *RunState) Errored() bool {
	return s.errored
}
