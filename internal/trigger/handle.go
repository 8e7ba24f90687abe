// Package trigger mints the tether names that wire internally generated
// events to each other and builds relay events forwarding one signal into
// another.
package trigger

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand/v2"
	"strconv"
	"strings"
)

// suffixSpace bounds random tether suffixes.
const suffixSpace = 1_000_000_000

const maxAttempts = 16

// Handle is a tether: a signal name made of a role tag and a suffix unique
// within one document build.
type Handle struct {
	Role   string
	Suffix uint64
}

func (h Handle) String() string {
	return h.Role + "_" + strconv.FormatUint(h.Suffix, 10)
}

// IsZero reports whether h was never issued.
func (h Handle) IsZero() bool { return h.Role == "" }

// Source supplies the randomness behind tether suffixes. *rand.PCG and
// *rand.ChaCha8 from math/rand/v2 satisfy it.
type Source interface {
	Uint64() uint64
}

// Generator issues tethers and remembers every name it issued or was told
// about. A Generator belongs to one document build and is not safe for
// concurrent use.
type Generator struct {
	src      Source
	issued   map[string]bool
	reserved map[string]bool
}

// NewGenerator returns a Generator drawing suffixes from src.
func NewGenerator(src Source) *Generator {
	return &Generator{src: src, issued: make(map[string]bool), reserved: make(map[string]bool)}
}

// NewSeeded returns a Generator whose tether sequence is fully determined by
// seed.
func NewSeeded(seed uint64) *Generator {
	return NewGenerator(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewSeed returns a seed from the operating system's random source.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("trigger: read seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// New issues a fresh tether for role. Clashes with an already issued or
// reserved name are retried; ErrCollision is returned only when every
// attempt clashes.
func (g *Generator) New(role string) (Handle, error) {
	if err := checkRole(role); err != nil {
		return Handle{}, err
	}
	for range maxAttempts {
		h := Handle{Role: role, Suffix: g.src.Uint64() % suffixSpace}
		if g.claim(h.String()) {
			return h, nil
		}
	}
	return Handle{}, fmt.Errorf("%w: %d attempts for role %q", ErrCollision, maxAttempts, role)
}

// Numbered issues the tether role_k. Unlike New it cannot retry, so a name
// already issued in this build is an ErrCollision.
func (g *Generator) Numbered(role string, k int) (Handle, error) {
	if err := checkRole(role); err != nil {
		return Handle{}, err
	}
	if k < 0 {
		return Handle{}, fmt.Errorf("trigger: tether index %d is negative", k)
	}
	h := Handle{Role: role, Suffix: uint64(k)}
	if !g.claim(h.String()) {
		return Handle{}, fmt.Errorf("%w: %s", ErrCollision, h)
	}
	return h, nil
}

// Reserve marks names as taken so no tether is ever issued with them.
// Composers reserve the signals already present in a document.
func (g *Generator) Reserve(names ...string) {
	for _, n := range names {
		g.reserved[n] = true
	}
}

// Release forgets tethers issued by g so a failed composition does not keep
// their names. Reserved names stay reserved.
func (g *Generator) Release(names ...string) {
	for _, n := range names {
		delete(g.issued, n)
	}
}

// Issued reports whether name is a tether issued by g. Reserved names are
// not tethers.
func (g *Generator) Issued(name string) bool { return g.issued[name] }

// Tethers returns the number of tethers g has issued.
func (g *Generator) Tethers() int { return len(g.issued) }

func (g *Generator) claim(name string) bool {
	if g.issued[name] || g.reserved[name] {
		return false
	}
	g.issued[name] = true
	return true
}

func checkRole(role string) error {
	if role == "" || strings.ContainsAny(role, " \t\n") {
		return fmt.Errorf("trigger: invalid tether role %q", role)
	}
	return nil
}
