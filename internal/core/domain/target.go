// Package domain contains the core domain models for the module-aware
// compile scheduler: targets, the dependency graph, fingerprints and
// lifecycle events.
package domain

// Target is one compilation unit: a source file plus the command that
// compiles it. The object-output path is embedded in Args by convention and
// never parsed out. Targets are immutable once loaded.
type Target struct {
	Name InternedString

	// Source is the path to the source file.
	Source string

	// Args is the compile command; the source path is appended at dispatch.
	Args []string

	// Includes lists extra directories searched for precompiled module
	// artifacts. A used module found there is satisfied externally.
	Includes []string
}

// ModuleInterface is the scanner's view of a source file: the module names
// it defines, the module names it uses, and its line count. The used set
// never contains a module the file itself defines.
type ModuleInterface struct {
	Defines []InternedString
	Uses    map[InternedString]struct{}
	Lines   int
}
