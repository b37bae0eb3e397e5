package ports

// Hasher computes the content hashes driving change detection.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// SourceHash hashes a source file's bytes together with its compile
	// arguments, so a changed command re-dirties the target.
	SourceHash(path string, args []string) (string, error)

	// ArtifactHash computes a cryptographic digest of a module artifact's
	// raw bytes. Byte-identical artifacts always compare equal regardless
	// of timestamps.
	ArtifactHash(path string) (string, error)
}
