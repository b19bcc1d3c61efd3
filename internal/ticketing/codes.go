package ticketing

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	mrand "math/rand/v2"
	"strings"
	"sync"
	"time"
)

// codeBytes is the number of random bytes per ticket code; hex-encoding
// yields the 8-character code printed on the ticket.
const codeBytes = 4

// maxGenerationRounds bounds how many times a batch may be re-drawn after
// collisions with persisted codes.  Hitting the bound signals a collision
// storm (or a nearly exhausted code space), not normal operation.
const maxGenerationRounds = 10

// ErrCodesExhausted is returned when unique ticket codes could not be
// produced within the retry budget.
var ErrCodesExhausted = errors.New("could not generate unique ticket codes")

// CodeIndex answers which of the candidate codes already exist in storage.
// The issuer passes its transaction-scoped store so the uniqueness check
// and the insert observe the same snapshot.
type CodeIndex interface {
	ExistingCodes(ctx context.Context, codes []string) ([]string, error)
}

// CodeGenerator produces globally unique, human-short ticket codes:
// 8 uppercase hexadecimal characters drawn from a cryptographically strong
// source.  The random source is injectable for tests; production callers
// construct it with NewCodeGenerator(nil) to use crypto/rand.
type CodeGenerator struct {
	src io.Reader
}

// NewCodeGenerator returns a generator reading randomness from src, or
// from crypto/rand when src is nil.
func NewCodeGenerator(src io.Reader) *CodeGenerator {
	if src == nil {
		src = rand.Reader
	}
	return &CodeGenerator{src: src}
}

// one draws a single candidate code from the random source.
func (g *CodeGenerator) one() (string, error) {
	buf := make([]byte, codeBytes)
	if _, err := io.ReadFull(g.src, buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// Generate returns n distinct codes that collide neither with each other
// nor with any code already persisted according to index.  Candidates that
// turn out to exist are re-drawn; after maxGenerationRounds the function
// gives up with ErrCodesExhausted and no codes should be used.
func (g *CodeGenerator) Generate(ctx context.Context, index CodeIndex, n int) ([]string, error) {
	accepted := make([]string, 0, n)
	seen := make(map[string]struct{}, n)

	for round := 0; round < maxGenerationRounds; round++ {
		// Draw enough fresh candidates to fill the batch.  In-flight
		// duplicates are dropped immediately; only novel candidates
		// are checked against storage.
		candidates := make([]string, 0, n-len(accepted))
		for len(candidates)+len(accepted) < n {
			code, err := g.one()
			if err != nil {
				return nil, err
			}
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			candidates = append(candidates, code)
		}

		existing, err := index.ExistingCodes(ctx, candidates)
		if err != nil {
			return nil, err
		}
		taken := make(map[string]struct{}, len(existing))
		for _, code := range existing {
			taken[code] = struct{}{}
		}
		for _, code := range candidates {
			if _, clash := taken[code]; !clash {
				accepted = append(accepted, code)
			}
		}
		if len(accepted) == n {
			return accepted, nil
		}
	}
	return nil, ErrCodesExhausted
}

// Seat coordinate bounds.  Seats are cosmetic: capacity is enforced at the
// stand level only, so two tickets may legitimately share a row/seat pair.
const (
	maxRow  = 30
	maxSeat = 50
)

// SeatPicker assigns random seat coordinates to issued tickets.  The
// underlying *rand.Rand is not safe for concurrent use, so picks are
// serialized with a mutex; issuance requests run on concurrent goroutines.
type SeatPicker struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeatPicker returns a picker driven by rng, or by a time-seeded source
// when rng is nil.  Tests inject a fixed seed for reproducible layouts.
func NewSeatPicker(rng *mrand.Rand) *SeatPicker {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = mrand.New(mrand.NewPCG(seed, seed>>1))
	}
	return &SeatPicker{rng: rng}
}

// Pick returns a row in [1,30] and a seat in [1,50].
func (p *SeatPicker) Pick() (row, seat int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(maxRow) + 1, p.rng.IntN(maxSeat) + 1
}
