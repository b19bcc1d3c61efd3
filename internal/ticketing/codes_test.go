package ticketing

import (
	"context"
	"errors"
	mrand "math/rand/v2"
	"regexp"
	"testing"
)

// staticIndex reports a fixed set of codes as already persisted.
type staticIndex struct {
	existing map[string]struct{}
}

func (s *staticIndex) ExistingCodes(_ context.Context, codes []string) ([]string, error) {
	var out []string
	for _, code := range codes {
		if _, ok := s.existing[code]; ok {
			out = append(out, code)
		}
	}
	return out, nil
}

// allTakenIndex claims every candidate already exists.
type allTakenIndex struct{}

func (allTakenIndex) ExistingCodes(_ context.Context, codes []string) ([]string, error) {
	return codes, nil
}

var codePattern = regexp.MustCompile(`^[0-9A-F]{8}$`)

func TestGenerateUniqueWellFormedCodes(t *testing.T) {
	gen := NewCodeGenerator(nil)
	index := &staticIndex{}

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		codes, err := gen.Generate(context.Background(), index, 10)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if len(codes) != 10 {
			t.Fatalf("Expected 10 codes, got %d", len(codes))
		}
		for _, code := range codes {
			if !codePattern.MatchString(code) {
				t.Errorf("Code %q is not 8 uppercase hex characters", code)
			}
			if _, dup := seen[code]; dup {
				t.Errorf("Code %q generated twice", code)
			}
			seen[code] = struct{}{}
		}
	}
}

func TestGenerateThousandCodeBatch(t *testing.T) {
	// Pre-seed the index with the first 25 draws of the deterministic
	// source, so the single 1000-code batch has to survive collisions
	// with persisted codes as well as in-batch duplicates.
	seeder := NewCodeGenerator(&rngReader{rng: mrand.New(mrand.NewPCG(9, 9))})
	existing := make(map[string]struct{}, 25)
	for i := 0; i < 25; i++ {
		code, err := seeder.one()
		if err != nil {
			t.Fatalf("Seeding index: %v", err)
		}
		existing[code] = struct{}{}
	}

	gen := NewCodeGenerator(&rngReader{rng: mrand.New(mrand.NewPCG(9, 9))})
	codes, err := gen.Generate(context.Background(), &staticIndex{existing: existing}, 1000)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(codes) != 1000 {
		t.Fatalf("Expected 1000 codes, got %d", len(codes))
	}
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if !codePattern.MatchString(code) {
			t.Errorf("Code %q is not 8 uppercase hex characters", code)
		}
		if _, taken := existing[code]; taken {
			t.Errorf("Persisted code %q was returned", code)
		}
		if _, dup := seen[code]; dup {
			t.Errorf("Code %q generated twice in one batch", code)
		}
		seen[code] = struct{}{}
	}
}

func TestGenerateRedrawsPersistedCollisions(t *testing.T) {
	// A deterministic source makes the first draw predictable, so the
	// index can be seeded with exactly that code.
	rng := mrand.New(mrand.NewPCG(1, 2))
	src := &rngReader{rng: rng}

	first, err := NewCodeGenerator(&rngReader{rng: mrand.New(mrand.NewPCG(1, 2))}).one()
	if err != nil {
		t.Fatalf("drawing first code: %v", err)
	}

	gen := NewCodeGenerator(src)
	index := &staticIndex{existing: map[string]struct{}{first: {}}}
	codes, err := gen.Generate(context.Background(), index, 5)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(codes) != 5 {
		t.Fatalf("Expected 5 codes, got %d", len(codes))
	}
	for _, code := range codes {
		if code == first {
			t.Errorf("Persisted code %q was returned again", code)
		}
	}
}

func TestGenerateGivesUpAfterRetryBudget(t *testing.T) {
	gen := NewCodeGenerator(nil)
	_, err := gen.Generate(context.Background(), allTakenIndex{}, 3)
	if !errors.Is(err, ErrCodesExhausted) {
		t.Fatalf("Expected ErrCodesExhausted, got %v", err)
	}
}

func TestSeatPickerBounds(t *testing.T) {
	picker := NewSeatPicker(mrand.New(mrand.NewPCG(42, 43)))
	for i := 0; i < 1000; i++ {
		row, seat := picker.Pick()
		if row < 1 || row > 30 {
			t.Fatalf("Row %d out of [1,30]", row)
		}
		if seat < 1 || seat > 50 {
			t.Fatalf("Seat %d out of [1,50]", seat)
		}
	}
}

// rngReader adapts a seeded PRNG to io.Reader for deterministic code
// draws.
type rngReader struct {
	rng *mrand.Rand
}

func (r *rngReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.rng.IntN(256))
	}
	return len(p), nil
}
