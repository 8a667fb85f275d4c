package solver

import (
	"errors"
	"fmt"
	"maps"
	"math/rand"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/limaJavier/csp-timetabling/pkg/model"
)

type Status int

const (
	StatusSolved Status = iota
	StatusExhausted
	StatusTimedOut
)

func (s Status) String() string {
	switch s {
	case StatusSolved:
		return "solved"
	case StatusExhausted:
		return "exhausted"
	case StatusTimedOut:
		return "timed-out"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Invalid-input conditions, rejected before any search work
var (
	ErrInvalidTimeout = errors.New("timeout must be positive")
	ErrNoLectures     = errors.New("no lectures to schedule")
)

type missingDomainError struct {
	key model.LectureKey
}

func (err missingDomainError) Error() string {
	return fmt.Sprintf("no domain for lecture %v", err.key)
}

type duplicateLectureError struct {
	key model.LectureKey
}

func (err duplicateLectureError) Error() string {
	return fmt.Sprintf("duplicate lecture %v", err.key)
}

// Progress is a read-only snapshot handed to the progress callback
type Progress struct {
	Assigned   int
	Total      int
	Iterations uint64
}

// Result reports the outcome of one solve call. Assignment is non-nil only
// when Status is StatusSolved; BestAssigned is the deepest partial-assignment
// size reached, kept for failure diagnostics. StatusTimedOut and
// StatusExhausted both mean "no usable result" and differ only diagnostically
type Result struct {
	RunID        string
	Status       Status
	Assignment   model.Assignment
	Iterations   uint64
	BestAssigned int
	Elapsed      time.Duration
}

// Solver runs backtracking search over the lectures and their domains. A
// solver instance owns its assignment state: it must not be reused for
// concurrent calls, use a fresh instance per call. Lectures and domains are
// never mutated and can be shared freely
type Solver interface {
	Solve() (Result, error)
}

func NewSolver(lectures []model.Lecture, domains model.Domains, config SolverConfig) Solver {
	if config.ProgressEvery == 0 {
		config.ProgressEvery = DefaultProgressEvery
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &backtrackingSolver{
		lectures: lectures,
		keys: lo.Map(lectures, func(lecture model.Lecture, _ int) model.LectureKey {
			return lecture.Key()
		}),
		domains: domains,
		config:  config,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

type backtrackingSolver struct {
	lectures []model.Lecture
	keys     []model.LectureKey
	domains  model.Domains
	config   SolverConfig
	rng      *rand.Rand

	assignment   model.Assignment
	iterations   uint64
	bestAssigned int
	start        time.Time
	timedOut     bool
}

func (s *backtrackingSolver) Solve() (Result, error) {
	if err := s.validate(); err != nil {
		return Result{}, err
	}

	s.assignment = make(model.Assignment, len(s.keys))
	s.iterations = 0
	s.bestAssigned = 0
	s.timedOut = false
	s.start = time.Now()

	result := Result{RunID: uuid.NewString()}

	// A variable with an empty domain can never be assigned: fail before
	// spending any budget on search
	for _, key := range s.keys {
		if len(s.domains[key]) == 0 {
			result.Status = StatusExhausted
			result.Elapsed = time.Since(s.start)
			return result, nil
		}
	}

	solution := s.backtrack()

	result.Iterations = s.iterations
	result.BestAssigned = s.bestAssigned
	result.Elapsed = time.Since(s.start)

	switch {
	case solution != nil:
		result.Status = StatusSolved
		result.Assignment = solution
	case s.timedOut:
		result.Status = StatusTimedOut
	default:
		result.Status = StatusExhausted
	}

	return result, nil
}

func (s *backtrackingSolver) validate() error {
	if s.config.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if len(s.lectures) == 0 {
		return ErrNoLectures
	}

	seen := make(map[model.LectureKey]bool, len(s.keys))
	for _, key := range s.keys {
		if seen[key] {
			return duplicateLectureError{key: key}
		}
		seen[key] = true

		if _, ok := s.domains[key]; !ok {
			return missingDomainError{key: key}
		}
	}

	return nil
}

// backtrack is classic chronological backtracking: commit a value, recurse,
// undo the commit on failure. It returns a complete assignment or nil
func (s *backtrackingSolver) backtrack() model.Assignment {
	s.iterations++

	if time.Since(s.start) > s.config.Timeout {
		s.timedOut = true
		return nil
	}

	if s.config.OnProgress != nil && s.iterations%s.config.ProgressEvery == 0 {
		s.config.OnProgress(Progress{
			Assigned:   len(s.assignment),
			Total:      len(s.keys),
			Iterations: s.iterations,
		})
	}

	if len(s.assignment) == len(s.keys) {
		return maps.Clone(s.assignment)
	}

	key, ok := s.selectUnassigned()
	if !ok {
		return nil
	}

	for _, value := range s.shuffled(s.domains[key]) {
		if !IsConsistent(key, value, s.assignment) {
			continue
		}

		s.assignment[key] = value
		if len(s.assignment) > s.bestAssigned {
			s.bestAssigned = len(s.assignment)
		}

		if solution := s.backtrack(); solution != nil {
			return solution
		}

		delete(s.assignment, key)
		if s.timedOut {
			return nil
		}
	}

	return nil
}

// selectUnassigned applies the most-constrained-variable heuristic: the
// remaining-value count of every unassigned lecture is recomputed against the
// current partial assignment at every decision point, ties broken by
// first-encountered order. Intentionally not incrementally maintained: the
// recount is the dominant cost of the search and the first place to optimize
func (s *backtrackingSolver) selectUnassigned() (model.LectureKey, bool) {
	var best model.LectureKey
	bestRemaining := -1

	for _, key := range s.keys {
		if _, assigned := s.assignment[key]; assigned {
			continue
		}

		remaining := lo.CountBy(s.domains[key], func(value model.Value) bool {
			return IsConsistent(key, value, s.assignment)
		})

		if bestRemaining == -1 || remaining < bestRemaining {
			best = key
			bestRemaining = remaining
		}
	}

	return best, bestRemaining != -1
}

// shuffled returns a uniformly shuffled copy of the domain. Randomized value
// ordering diversifies search paths across runs; the seed pins it for tests
func (s *backtrackingSolver) shuffled(domain []model.Value) []model.Value {
	values := slices.Clone(domain)
	s.rng.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})
	return values
}
