// Package scan implements the Fortran module scanner.
//
// The scanner is a line-oriented, best-effort static scan, not a parser.
// This is a deliberate trade-off: it stays fast on large trees at the cost
// of missing dependencies expressed through unusual syntax (for example
// `use, intrinsic ::` renames). A missed `use` only reduces parallelism or
// incrementality; the scanner never fabricates a dependency, so it cannot
// produce an incorrect build.
package scan

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"go.trai.ch/fcomp/internal/core/domain"
	"go.trai.ch/zerr"
)

var (
	moduleRe = regexp.MustCompile(`(?i)^module\s+(\w+)`)
	useRe    = regexp.MustCompile(`(?i)^use\s+(\w+)`)
)

// Scanner implements ports.Scanner for Fortran sources.
type Scanner struct{}

// New creates a new Scanner.
func New() *Scanner {
	return &Scanner{}
}

// Scan extracts defined and used module names from source text. Keyword
// matching is case-insensitive and module names are normalized to lower
// case. Blank lines and `!` comments are skipped; `module procedure`
// statements define nothing. The used set never includes a module the file
// itself defines.
//
// A read error yields the interface scanned so far alongside the error, so
// callers can degrade to a partial result.
func (s *Scanner) Scan(r io.Reader) (domain.ModuleInterface, error) {
	iface := domain.ModuleInterface{
		Uses: make(map[domain.InternedString]struct{}),
	}
	defined := make(map[string]bool)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		iface.Lines++
		line := strings.TrimLeft(sc.Text(), " \t")
		if line == "" || line[0] == '!' {
			continue
		}

		word, _, _ := strings.Cut(line, " ")
		switch strings.ToLower(word) {
		case "module":
			m := moduleRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := strings.ToLower(m[1])
			if name == "procedure" || defined[name] {
				continue
			}
			defined[name] = true
			iface.Defines = append(iface.Defines, domain.NewInternedString(name))
		case "use":
			m := useRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			iface.Uses[domain.NewInternedString(strings.ToLower(m[1]))] = struct{}{}
		}
	}

	for _, def := range iface.Defines {
		delete(iface.Uses, def)
	}

	if err := sc.Err(); err != nil {
		return iface, zerr.Wrap(err, "failed to scan source")
	}
	return iface, nil
}
