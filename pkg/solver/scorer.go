package solver

import (
	"cmp"
	"math"
	"slices"
	"strconv"

	"github.com/samber/lo"

	"github.com/limaJavier/csp-timetabling/pkg/model"
)

const scoreBase = 1000.0

// Rooms sharing an ID prefix are graded by numeric suffix distance; rooms in
// different prefixes (lecture wing vs lab wing) get a flat distance
const (
	crossWingDistance     = 3.0
	unknownSuffixDistance = 1.0
)

// Breakdown decomposes the quality score of a completed assignment into its
// four soft-constraint terms: Total = Base - GapPenalty + BalanceBonus -
// TimePenalty - RoomDistancePenalty
type Breakdown struct {
	Base                float64
	GapPenalty          float64
	BalanceBonus        float64
	TimePenalty         float64
	RoomDistancePenalty float64
	Total               float64
}

// Statistics summarizes resource usage of a completed assignment
type Statistics struct {
	TotalAssigned  int
	TimeSlotUsage  map[string]int
	InstructorLoad map[string]int
	RoomUsage      map[string]int
}

// Scorer ranks completed assignments by schedule-quality heuristics. Scoring
// is side-effect free and idempotent, runs only after a successful solve and
// never influences the search
type Scorer interface {
	Score(assignment model.Assignment) Breakdown
	Statistics(assignment model.Assignment) Statistics
}

func NewScorer(timeslots map[string]model.TimeSlot, config ScoreConfig) Scorer {
	return &qualityScorer{
		timeslots: timeslots,
		config:    config,
		earlySet:  lo.SliceToMap(config.EarlySlots, func(id string) (string, bool) { return id, true }),
		lateSet:   lo.SliceToMap(config.LateSlots, func(id string) (string, bool) { return id, true }),
	}
}

type qualityScorer struct {
	timeslots map[string]model.TimeSlot
	config    ScoreConfig
	earlySet  map[string]bool
	lateSet   map[string]bool
}

// session is one scheduled class within a single party's weekday schedule
type session struct {
	Position int
	Room     string
}

func (s *qualityScorer) Score(assignment model.Assignment) Breakdown {
	sectionDays := s.groupBySectionAndDay(assignment)
	instructorDays := s.groupByInstructorAndDay(assignment)

	breakdown := Breakdown{
		Base:         scoreBase,
		GapPenalty:   s.gapPenalty(sectionDays),
		BalanceBonus: s.balanceBonus(sectionDays),
		TimePenalty:  s.timePreferencePenalty(assignment),
		// Section-view and instructor-view penalties are summed
		// independently, not deduplicated
		RoomDistancePenalty: s.roomDistancePenalty(sectionDays) + s.roomDistancePenalty(instructorDays),
	}
	breakdown.Total = breakdown.Base -
		breakdown.GapPenalty +
		breakdown.BalanceBonus -
		breakdown.TimePenalty -
		breakdown.RoomDistancePenalty

	return breakdown
}

func (s *qualityScorer) Statistics(assignment model.Assignment) Statistics {
	values := lo.Values(assignment)
	return Statistics{
		TotalAssigned:  len(assignment),
		TimeSlotUsage:  lo.CountValuesBy(values, func(value model.Value) string { return value.TimeSlot }),
		InstructorLoad: lo.CountValuesBy(values, func(value model.Value) string { return value.Instructor }),
		RoomUsage:      lo.CountValuesBy(values, func(value model.Value) string { return value.Room }),
	}
}

// gapPenalty charges every empty timeslot position sitting strictly between a
// party's earliest and latest session of the same weekday
func (s *qualityScorer) gapPenalty(schedules map[[2]string][]session) float64 {
	penalty := 0.0

	for _, key := range sortedGroupKeys(schedules) {
		sessions := schedules[key]
		if len(sessions) < 2 {
			continue
		}
		sorted := sortedByPosition(sessions)
		for i := 0; i < len(sorted)-1; i++ {
			if gap := sorted[i+1].Position - sorted[i].Position - 1; gap > 0 {
				penalty += float64(gap) * s.config.Weights.Gap
			}
		}
	}

	return penalty
}

// balanceBonus rewards sections whose sessions spread evenly over the days
// they attend: bonus per section = max(0, 5 - stddev of per-day counts).
// Sections and days are walked in sorted order: the stddev terms are
// irrational, so float summation order must be fixed for the score to be
// reproducible call over call
func (s *qualityScorer) balanceBonus(sectionDays map[[2]string][]session) float64 {
	dayCounts := make(map[string][]float64)
	sections := make([]string, 0)
	for _, key := range sortedGroupKeys(sectionDays) {
		section := key[0]
		if _, ok := dayCounts[section]; !ok {
			sections = append(sections, section)
		}
		dayCounts[section] = append(dayCounts[section], float64(len(sectionDays[key])))
	}

	bonus := 0.0
	for _, section := range sections {
		counts := dayCounts[section]
		mean := lo.Sum(counts) / float64(len(counts))
		variance := lo.SumBy(counts, func(count float64) float64 {
			return (count - mean) * (count - mean)
		}) / float64(len(counts))
		stdDev := math.Sqrt(variance)

		bonus += math.Max(0, 5-stdDev) * s.config.Weights.Balance
	}

	return bonus
}

// timePreferencePenalty charges every session landing in a designated early
// or late timeslot; a slot configured in both sets is charged twice. Lectures
// are walked in key order so overridden weights sum identically across calls
func (s *qualityScorer) timePreferencePenalty(assignment model.Assignment) float64 {
	keys := lo.Keys(assignment)
	slices.SortFunc(keys, compareLectureKeys)

	penalty := 0.0
	for _, key := range keys {
		value := assignment[key]
		if s.earlySet[value.TimeSlot] {
			penalty += s.config.Weights.Early
		}
		if s.lateSet[value.TimeSlot] {
			penalty += s.config.Weights.Late
		}
	}
	return penalty
}

// roomDistancePenalty charges back-to-back sessions (adjacent positions, no
// gap) held in rooms further apart than the configured threshold
func (s *qualityScorer) roomDistancePenalty(schedules map[[2]string][]session) float64 {
	penalty := 0.0

	for _, key := range sortedGroupKeys(schedules) {
		sessions := schedules[key]
		if len(sessions) < 2 {
			continue
		}
		sorted := sortedByPosition(sessions)
		for i := 0; i < len(sorted)-1; i++ {
			if sorted[i+1].Position != sorted[i].Position+1 {
				continue
			}
			if distance := roomDistance(sorted[i].Room, sorted[i+1].Room); distance > s.config.DistanceThreshold {
				penalty += distance * s.config.Weights.RoomDistance
			}
		}
	}

	return penalty
}

// roomDistance is an abstract distance between two rooms: 0 for the same
// room, |numeric suffix difference| / 5 (integer division) within a prefix,
// flat across prefixes
func roomDistance(room1, room2 string) float64 {
	if room1 == room2 {
		return 0
	}
	if room1 == "" || room2 == "" || room1[0] != room2[0] {
		return crossWingDistance
	}

	suffix1, err1 := strconv.Atoi(room1[1:])
	suffix2, err2 := strconv.Atoi(room2[1:])
	if err1 != nil || err2 != nil {
		return unknownSuffixDistance
	}

	difference := suffix1 - suffix2
	if difference < 0 {
		difference = -difference
	}
	return float64(difference / 5)
}

func (s *qualityScorer) groupBySectionAndDay(assignment model.Assignment) map[[2]string][]session {
	grouped := make(map[[2]string][]session)
	for key, value := range assignment {
		slot, ok := s.timeslots[value.TimeSlot]
		if !ok {
			continue
		}
		groupKey := [2]string{key.Section, slot.Day}
		grouped[groupKey] = append(grouped[groupKey], session{Position: slot.Position, Room: value.Room})
	}
	return grouped
}

func (s *qualityScorer) groupByInstructorAndDay(assignment model.Assignment) map[[2]string][]session {
	grouped := make(map[[2]string][]session)
	for _, value := range assignment {
		slot, ok := s.timeslots[value.TimeSlot]
		if !ok {
			continue
		}
		groupKey := [2]string{value.Instructor, slot.Day}
		grouped[groupKey] = append(grouped[groupKey], session{Position: slot.Position, Room: value.Room})
	}
	return grouped
}

// sortedGroupKeys fixes the accumulation order over a party/day grouping so
// repeated scoring of the same assignment sums floats identically
func sortedGroupKeys(schedules map[[2]string][]session) [][2]string {
	keys := lo.Keys(schedules)
	slices.SortFunc(keys, func(a, b [2]string) int {
		if comparison := cmp.Compare(a[0], b[0]); comparison != 0 {
			return comparison
		}
		return cmp.Compare(a[1], b[1])
	})
	return keys
}

func sortedByPosition(sessions []session) []session {
	sorted := slices.Clone(sessions)
	slices.SortFunc(sorted, func(a, b session) int {
		return a.Position - b.Position
	})
	return sorted
}
