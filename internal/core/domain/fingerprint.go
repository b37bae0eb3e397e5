package domain

// Snapshot is the fingerprint state persisted across runs. Sources maps a
// target name to the hash of its source bytes and compile arguments; Modules
// maps a module name to the content hash of its most recently produced
// artifact. Artifacts are fingerprinted per module, not per target, so a
// target emitting several modules invalidates only the users of the modules
// that actually changed.
type Snapshot struct {
	Sources map[string]string `json:"sources"`
	Modules map[string]string `json:"modules"`
}

// NewSnapshot creates an empty Snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Sources: make(map[string]string),
		Modules: make(map[string]string),
	}
}

// SourceHash returns the recorded source hash for a target name.
func (s *Snapshot) SourceHash(name InternedString) (string, bool) {
	h, ok := s.Sources[name.String()]
	return h, ok
}

// ModuleHash returns the recorded artifact hash for a module name.
func (s *Snapshot) ModuleHash(module InternedString) (string, bool) {
	h, ok := s.Modules[module.String()]
	return h, ok
}
