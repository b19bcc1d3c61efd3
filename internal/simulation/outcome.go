package simulation

import (
	"math"
	mrand "math/rand/v2"
	"sync"
	"time"
)

// Statistical bounds for a generated outcome.
const (
	maxGoals          = 4
	maxFirstHalfGoals = 3
	minPossession     = 35.0
	maxPossession     = 65.0
	maxYellowCards    = 5
	maxRedCards       = 2
	minShotsOnGoal    = 3
	maxShotsOnGoal    = 15
)

// SideStats is the generated statistics for one side of a match.
type SideStats struct {
	Goals           int
	GoalsFirstHalf  int
	GoalsSecondHalf int
	Possession      float64
	YellowCards     int
	RedCards        int
	ShotsOnGoal     int
}

// Outcome is a self-consistent generated match result.  Per side, the two
// half-goal counts sum to the total; the two possession percentages sum to
// 100.00.  The outcome is the only place randomness enters a simulation:
// everything downstream (timeline, persistence) is deterministic given it.
type Outcome struct {
	Local   SideStats
	Visitor SideStats
}

// Simulator draws statistically bounded outcomes and expands them into
// event timelines.  The random source is injected so tests can seed it and
// assert exact results; a mutex guards it because *rand.Rand is not safe
// for concurrent use.
type Simulator struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSimulator returns a simulator driven by rng, or by a time-seeded
// source when rng is nil.
func NewSimulator(rng *mrand.Rand) *Simulator {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = mrand.New(mrand.NewPCG(seed, seed>>1))
	}
	return &Simulator{rng: rng}
}

// intn draws a uniform integer in [min,max] inclusive.
func (s *Simulator) intn(min, max int) int {
	return s.rng.IntN(max-min+1) + min
}

// sideStats generates one side's statistics.  First-half goals are drawn
// from [0, min(total,3)] and the second half takes the remainder, so the
// split can never go negative.
func (s *Simulator) sideStats() SideStats {
	goals := s.intn(0, maxGoals)
	firstHalf := s.intn(0, minInt(goals, maxFirstHalfGoals))
	return SideStats{
		Goals:           goals,
		GoalsFirstHalf:  firstHalf,
		GoalsSecondHalf: goals - firstHalf,
		YellowCards:     s.intn(0, maxYellowCards),
		RedCards:        s.intn(0, maxRedCards),
		ShotsOnGoal:     s.intn(minShotsOnGoal, maxShotsOnGoal),
	}
}

// Simulate draws a complete outcome.  The visitor possession is the exact
// complement of the local draw, never an independent sample, which is what
// keeps the two summing to 100.00.
func (s *Simulator) Simulate() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Outcome{Local: s.sideStats(), Visitor: s.sideStats()}
	local := round2(minPossession + s.rng.Float64()*(maxPossession-minPossession))
	out.Local.Possession = local
	out.Visitor.Possession = round2(100 - local)
	return out
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
