package model

import (
	"go.uber.org/zap"
)

// ProblemBuilder turns reference records into scheduling variables and their
// domains. Lectures and domains are built once per solve request and never
// mutated afterwards
type ProblemBuilder interface {
	// BuildLectures creates the lectures for the given sections: one variable
	// per weekly session of every course the section takes. A course missing
	// from the course table is skipped with a diagnostic
	BuildLectures(sectionIDs []string) []Lecture

	// BuildDomains enumerates, per lecture, every (timeslot, room, instructor)
	// value that satisfies room-type match, instructor qualification and
	// instructor day-availability. A lecture may end up with an empty domain;
	// the solver treats that as infeasible
	BuildDomains(lectures []Lecture) Domains
}

func NewProblemBuilder(tables Tables, logger *zap.Logger) ProblemBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &problemBuilder{
		tables: tables,
		logger: logger,
	}
}

type problemBuilder struct {
	tables Tables
	logger *zap.Logger
}

// sessionsPerWeek derives the number of weekly sessions from credits
func sessionsPerWeek(credits int) int {
	switch credits {
	case 1, 2:
		return 1
	case 3, 4:
		return 2
	case 5:
		return 3
	default:
		return 2
	}
}

func (b *problemBuilder) BuildLectures(sectionIDs []string) []Lecture {
	lectures := make([]Lecture, 0)

	for _, sectionID := range sectionIDs {
		section, ok := b.tables.Sections[sectionID]
		if !ok {
			b.logger.Warn("unknown section", zap.String("section", sectionID))
			continue
		}

		for _, courseID := range section.Courses {
			course, ok := b.tables.Courses[courseID]
			if !ok {
				b.logger.Warn("course not found, lecture skipped",
					zap.String("section", sectionID),
					zap.String("course", courseID))
				continue
			}

			for number := 1; number <= sessionsPerWeek(course.Credits); number++ {
				lectures = append(lectures, Lecture{
					SectionID: sectionID,
					CourseID:  courseID,
					Number:    number,
				})
			}
		}
	}

	return lectures
}

func (b *problemBuilder) BuildDomains(lectures []Lecture) Domains {
	domains := make(Domains, len(lectures))
	for _, lecture := range lectures {
		domains[lecture.Key()] = b.buildDomain(lecture)
	}
	return domains
}

func (b *problemBuilder) buildDomain(lecture Lecture) []Value {
	course := b.tables.Courses[lecture.CourseID]

	roomType := "Lecture"
	if course.NeedsLab() {
		roomType = "Lab"
	}

	rooms := b.tables.RoomsOfType(roomType)
	instructors := b.tables.QualifiedInstructors(course.ID)

	if len(instructors) == 0 {
		b.logger.Warn("no qualified instructor", zap.String("course", course.ID))
	}
	if len(rooms) == 0 {
		b.logger.Warn("no room of matching type",
			zap.String("course", course.ID),
			zap.String("roomType", roomType))
	}

	domain := make([]Value, 0, len(b.tables.SlotOrder)*len(rooms)*len(instructors))
	for _, slotID := range b.tables.SlotOrder {
		slot := b.tables.TimeSlots[slotID]
		for _, room := range rooms {
			for _, instructor := range instructors {
				if !instructor.AvailableOn(slot.Day) {
					continue
				}
				domain = append(domain, Value{
					TimeSlot:   slot.ID,
					Room:       room.ID,
					Instructor: instructor.ID,
				})
			}
		}
	}

	return domain
}
