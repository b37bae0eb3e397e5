// Package fs provides filesystem-backed hashing adapters.
package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/fcomp/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes the two hash families used for change detection: a fast
// xxhash over source bytes and compile arguments for dirtiness seeding, and
// a sha256 digest over module artifact bytes for the interface fingerprint
// that gates change propagation.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// SourceHash hashes the compile arguments followed by the source file's
// content. Changing either the source or the command dirties the target.
func (h *Hasher) SourceHash(path string, args []string) (string, error) {
	d := xxhash.New()
	for _, a := range args {
		_, _ = d.WriteString(a)
		_, _ = d.Write([]byte{0})
	}

	f, err := os.Open(path) //nolint:gosec // Path comes from the build spec
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to open source file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	if _, err := io.Copy(d, f); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to hash source file"), "path", path)
	}
	return fmt.Sprintf("%016x", d.Sum64()), nil
}

// ArtifactHash computes the sha256 digest of an artifact's raw bytes.
func (h *Hasher) ArtifactHash(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // Path is derived from module names
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to open module artifact"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	d := sha256.New()
	if _, err := io.Copy(d, f); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to hash module artifact"), "path", path)
	}
	return hex.EncodeToString(d.Sum(nil)), nil
}
