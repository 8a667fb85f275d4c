package solver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/limaJavier/csp-timetabling/pkg/model"
)

func testConfig() SolverConfig {
	config := DefaultSolverConfig()
	config.Timeout = 10 * time.Second
	config.Seed = 42
	return config
}

func TestSolve(t *testing.T) {
	t.Run("Small feasible instance", func(t *testing.T) {
		//**Arrange: two lectures whose only values share nothing
		lectures := []model.Lecture{
			{SectionID: "S1_L1", CourseID: "AID312", Number: 1},
			{SectionID: "S2_L1", CourseID: "PHY113", Number: 1},
		}
		domains := model.Domains{
			lectures[0].Key(): {{TimeSlot: "TS0", Room: "L1", Instructor: "PROF11"}},
			lectures[1].Key(): {{TimeSlot: "TS1", Room: "R101", Instructor: "PROF03"}},
		}

		//**Act
		result, err := NewSolver(lectures, domains, testConfig()).Solve()

		//**Assert
		assert.Nil(t, err)
		assert.Equal(t, StatusSolved, result.Status)
		assert.Len(t, result.Assignment, 2)
		assert.Contains(t, result.Assignment, lectures[0].Key())
		assert.Contains(t, result.Assignment, lectures[1].Key())
		assert.Empty(t, FindAllConflicts(result.Assignment))
		assert.NotEmpty(t, result.RunID)
	})

	t.Run("Forced section conflict is exhausted", func(t *testing.T) {
		//**Arrange: same section, single shared timeslot in both domains
		lectures := []model.Lecture{
			{SectionID: "S1_L1", CourseID: "AID312", Number: 1},
			{SectionID: "S1_L1", CourseID: "PHY113", Number: 1},
		}
		domains := model.Domains{
			lectures[0].Key(): {{TimeSlot: "TS0", Room: "L1", Instructor: "PROF11"}},
			lectures[1].Key(): {{TimeSlot: "TS0", Room: "R101", Instructor: "PROF03"}},
		}

		//**Act
		result, err := NewSolver(lectures, domains, testConfig()).Solve()

		//**Assert
		assert.Nil(t, err)
		assert.Equal(t, StatusExhausted, result.Status)
		assert.Nil(t, result.Assignment)
		assert.Equal(t, 1, result.BestAssigned)
	})

	t.Run("Empty domain short-circuits", func(t *testing.T) {
		//**Arrange
		lectures := []model.Lecture{
			{SectionID: "S1_L1", CourseID: "AID312", Number: 1},
			{SectionID: "S1_L1", CourseID: "MTH999", Number: 1},
		}
		domains := model.Domains{
			lectures[0].Key(): {{TimeSlot: "TS0", Room: "L1", Instructor: "PROF11"}},
			lectures[1].Key(): {},
		}
		config := testConfig()
		config.Timeout = 300 * time.Second

		//**Act
		result, err := NewSolver(lectures, domains, config).Solve()

		//**Assert: no search budget consumed beyond a trivial check
		assert.Nil(t, err)
		assert.Equal(t, StatusExhausted, result.Status)
		assert.Zero(t, result.Iterations)
		assert.Less(t, result.Elapsed, time.Second)
	})

	t.Run("Timeout reported as timed-out", func(t *testing.T) {
		//**Arrange
		lectures := []model.Lecture{{SectionID: "S1_L1", CourseID: "AID312", Number: 1}}
		domains := model.Domains{
			lectures[0].Key(): {{TimeSlot: "TS0", Room: "L1", Instructor: "PROF11"}},
		}
		config := testConfig()
		config.Timeout = time.Nanosecond

		//**Act
		result, err := NewSolver(lectures, domains, config).Solve()

		//**Assert
		assert.Nil(t, err)
		assert.Equal(t, StatusTimedOut, result.Status)
		assert.Nil(t, result.Assignment)
	})

	t.Run("Soundness on a larger instance", func(t *testing.T) {
		//**Arrange: 3 sections x 3 courses x 2 sessions over 15 slots
		lectures, domains := denseInstance(3, 3, 15)

		//**Act
		result, err := NewSolver(lectures, domains, testConfig()).Solve()

		//**Assert
		assert.Nil(t, err)
		assert.Equal(t, StatusSolved, result.Status)
		assert.Len(t, result.Assignment, len(lectures))
		assert.Empty(t, FindAllConflicts(result.Assignment))
	})

	t.Run("Pinned seed is deterministic", func(t *testing.T) {
		//**Arrange
		lectures, domains := denseInstance(2, 3, 10)

		//**Act
		first, err1 := NewSolver(lectures, domains, testConfig()).Solve()
		second, err2 := NewSolver(lectures, domains, testConfig()).Solve()

		//**Assert
		assert.Nil(t, err1)
		assert.Nil(t, err2)
		assert.Equal(t, first.Status, second.Status)
		assert.Equal(t, first.Assignment, second.Assignment)
		assert.Equal(t, first.Iterations, second.Iterations)
	})

	t.Run("Progress callback cadence", func(t *testing.T) {
		//**Arrange
		lectures, domains := denseInstance(2, 3, 10)
		var snapshots []Progress
		config := testConfig()
		config.ProgressEvery = 1
		config.OnProgress = func(progress Progress) {
			snapshots = append(snapshots, progress)
		}

		//**Act
		result, err := NewSolver(lectures, domains, config).Solve()

		//**Assert: one snapshot per decision step, all read-only and bounded
		assert.Nil(t, err)
		assert.Equal(t, uint64(len(snapshots)), result.Iterations)
		for _, snapshot := range snapshots {
			assert.LessOrEqual(t, snapshot.Assigned, snapshot.Total)
			assert.Equal(t, len(lectures), snapshot.Total)
		}
	})
}

func TestSolveValidation(t *testing.T) {
	lectures := []model.Lecture{{SectionID: "S1_L1", CourseID: "AID312", Number: 1}}
	domains := model.Domains{
		lectures[0].Key(): {{TimeSlot: "TS0", Room: "L1", Instructor: "PROF11"}},
	}

	t.Run("Non-positive timeout", func(t *testing.T) {
		config := testConfig()
		config.Timeout = -time.Second

		_, err := NewSolver(lectures, domains, config).Solve()

		assert.ErrorIs(t, err, ErrInvalidTimeout)
	})

	t.Run("Empty variable set", func(t *testing.T) {
		_, err := NewSolver(nil, model.Domains{}, testConfig()).Solve()

		assert.ErrorIs(t, err, ErrNoLectures)
	})

	t.Run("Missing domain", func(t *testing.T) {
		_, err := NewSolver(lectures, model.Domains{}, testConfig()).Solve()

		assert.NotNil(t, err)
		assert.Contains(t, err.Error(), "no domain for lecture")
	})

	t.Run("Duplicate lecture key", func(t *testing.T) {
		duplicated := append([]model.Lecture{}, lectures[0], lectures[0])

		_, err := NewSolver(duplicated, domains, testConfig()).Solve()

		assert.NotNil(t, err)
		assert.Contains(t, err.Error(), "duplicate lecture")
	})
}

// denseInstance builds a feasible instance: every lecture may take any of the
// given timeslots, with rooms and instructors dedicated per section so only
// timeslot contention constrains the search
func denseInstance(sections, coursesPerSection, slots int) ([]model.Lecture, model.Domains) {
	sectionIDs := []string{"S1_L1", "S2_L1", "S3_L1", "S4_L1"}[:sections]
	courseIDs := []string{"AID312", "PHY113", "LRA101", "ECE223"}[:coursesPerSection]

	lectures := make([]model.Lecture, 0)
	domains := make(model.Domains)

	for s, sectionID := range sectionIDs {
		for c, courseID := range courseIDs {
			for number := 1; number <= 2; number++ {
				lecture := model.Lecture{SectionID: sectionID, CourseID: courseID, Number: number}
				lectures = append(lectures, lecture)

				domain := make([]model.Value, 0, slots)
				for slot := 0; slot < slots; slot++ {
					domain = append(domain, model.Value{
						TimeSlot:   timeSlotID(slot),
						Room:       roomID(s, c),
						Instructor: instructorID(s, c),
					})
				}
				domains[lecture.Key()] = domain
			}
		}
	}

	return lectures, domains
}

func timeSlotID(slot int) string {
	return "TS" + string(rune('A'+slot))
}

func roomID(section, course int) string {
	return "R" + string(rune('0'+section)) + string(rune('0'+course))
}

func instructorID(section, course int) string {
	return "PROF" + string(rune('0'+section)) + string(rune('0'+course))
}
