package solver

import (
	"cmp"
	"slices"

	"github.com/limaJavier/csp-timetabling/pkg/model"
)

type ConflictKind string

const (
	InstructorConflict ConflictKind = "instructor"
	RoomConflict       ConflictKind = "room"
	SectionConflict    ConflictKind = "section"
)

// Conflict is one hard-constraint violation: a resource (instructor, room or
// section) booked more than once in the same timeslot. A triple collision is
// reported as three independent conflicts, one per kind
type Conflict struct {
	Kind     ConflictKind
	Resource string
	TimeSlot string
	Lectures []model.LectureKey
}

// IsConsistent checks whether extending the assignment with key := value
// keeps all three hard constraints satisfied over the resulting partial
// assignment. It is pure: neither argument is mutated
func IsConsistent(key model.LectureKey, value model.Value, assignment model.Assignment) bool {
	for other, assigned := range assignment {
		if other == key || assigned.TimeSlot != value.TimeSlot {
			continue
		}
		if assigned.Instructor == value.Instructor {
			return false
		}
		if assigned.Room == value.Room {
			return false
		}
		if other.Section == key.Section {
			return false
		}
	}
	return true
}

// FindAllConflicts enumerates every double-booking in the assignment for all
// three hard-constraint categories. Purely diagnostic: the search never
// consults it
func FindAllConflicts(assignment model.Assignment) []Conflict {
	instructorSchedule := make(map[[2]string][]model.LectureKey)
	roomSchedule := make(map[[2]string][]model.LectureKey)
	sectionSchedule := make(map[[2]string][]model.LectureKey)

	for key, value := range assignment {
		instructorKey := [2]string{value.Instructor, value.TimeSlot}
		roomKey := [2]string{value.Room, value.TimeSlot}
		sectionKey := [2]string{key.Section, value.TimeSlot}

		instructorSchedule[instructorKey] = append(instructorSchedule[instructorKey], key)
		roomSchedule[roomKey] = append(roomSchedule[roomKey], key)
		sectionSchedule[sectionKey] = append(sectionSchedule[sectionKey], key)
	}

	conflicts := collectConflicts(InstructorConflict, instructorSchedule)
	conflicts = append(conflicts, collectConflicts(RoomConflict, roomSchedule)...)
	conflicts = append(conflicts, collectConflicts(SectionConflict, sectionSchedule)...)

	slices.SortFunc(conflicts, func(a, b Conflict) int {
		if comparison := cmp.Compare(a.Kind, b.Kind); comparison != 0 {
			return comparison
		}
		if comparison := cmp.Compare(a.Resource, b.Resource); comparison != 0 {
			return comparison
		}
		return cmp.Compare(a.TimeSlot, b.TimeSlot)
	})

	return conflicts
}

func collectConflicts(kind ConflictKind, schedule map[[2]string][]model.LectureKey) []Conflict {
	conflicts := make([]Conflict, 0)
	for key, lectures := range schedule {
		if len(lectures) < 2 {
			continue
		}
		slices.SortFunc(lectures, compareLectureKeys)
		conflicts = append(conflicts, Conflict{
			Kind:     kind,
			Resource: key[0],
			TimeSlot: key[1],
			Lectures: lectures,
		})
	}
	return conflicts
}

func compareLectureKeys(a, b model.LectureKey) int {
	if comparison := cmp.Compare(a.Section, b.Section); comparison != 0 {
		return comparison
	}
	if comparison := cmp.Compare(a.Course, b.Course); comparison != 0 {
		return comparison
	}
	return cmp.Compare(a.Number, b.Number)
}
