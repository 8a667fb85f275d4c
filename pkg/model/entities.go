package model

import (
	"strings"

	"github.com/samber/lo"
)

type Course struct {
	ID      string
	Name    string
	Credits int
	Type    string // "Lecture" or "Lecture and Lab"
}

// NeedsLab checks whether the course must be scheduled in a lab room
func (c Course) NeedsLab() bool {
	return strings.Contains(c.Type, "Lab")
}

type Instructor struct {
	ID               string
	Name             string
	Role             string
	UnavailableDay   string // empty when the instructor has no blocked day
	QualifiedCourses []string
}

// CanTeach checks whether the instructor is qualified for the course
func (i Instructor) CanTeach(courseID string) bool {
	return lo.Contains(i.QualifiedCourses, courseID)
}

// AvailableOn checks whether the instructor can be scheduled on the given
// weekday; an empty UnavailableDay never matches a real weekday
func (i Instructor) AvailableOn(day string) bool {
	return i.UnavailableDay != day
}

type Room struct {
	ID       string
	Type     string // "Lecture" or "Lab"
	Capacity int
}

type TimeSlot struct {
	ID       string
	Day      string
	Position int // ordered position within its day
	Start    string
	End      string
}

type Section struct {
	ID           string
	StudentCount int
	Courses      []string
}

// Lecture is one required weekly teaching session of a course for a section:
// the scheduling variable
type Lecture struct {
	SectionID string
	CourseID  string
	Number    int // 1-based session number within the week
}

// LectureKey identifies a lecture across the whole problem instance. It is a
// comparable struct so it can be used directly as a map key
type LectureKey struct {
	Section string
	Course  string
	Number  int
}

func (l Lecture) Key() LectureKey {
	return LectureKey{Section: l.SectionID, Course: l.CourseID, Number: l.Number}
}

// Value is one candidate assignment for a lecture
type Value struct {
	TimeSlot   string
	Room       string
	Instructor string
}

// Assignment maps lectures to their chosen values. During search it is
// partial; a complete assignment covers every lecture of the instance
type Assignment map[LectureKey]Value

// Domains holds, per lecture, the ordered candidate values that already
// satisfy every unary feasibility rule
type Domains map[LectureKey][]Value
