package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

type ModelInput struct {
	Courses     []Course
	Instructors []Instructor
	Rooms       []Room
	TimeSlots   []TimeSlot `mapstructure:"timeslots"`
	Sections    []Section
}

// Tables exposes the reference records as read-only lookup tables keyed by
// ID, plus the input orderings the domain enumeration depends on
type Tables struct {
	Courses     map[string]Course
	Instructors map[string]Instructor
	Rooms       map[string]Room
	TimeSlots   map[string]TimeSlot
	Sections    map[string]Section

	SlotOrder       []string
	RoomOrder       []string
	InstructorOrder []string
}

func InputFromJson(file string) (ModelInput, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return ModelInput{}, err
	}

	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return ModelInput{}, err
	}

	var input ModelInput
	if err := mapstructure.Decode(inputJson, &input); err != nil {
		return ModelInput{}, fmt.Errorf("cannot transform input document: %w", err)
	}

	return input, nil
}

// Tables indexes the input records by ID. Timeslot positions are derived from
// input order within each day. Duplicate IDs are rejected
func (input ModelInput) Tables() (Tables, error) {
	tables := Tables{
		Courses:     make(map[string]Course, len(input.Courses)),
		Instructors: make(map[string]Instructor, len(input.Instructors)),
		Rooms:       make(map[string]Room, len(input.Rooms)),
		TimeSlots:   make(map[string]TimeSlot, len(input.TimeSlots)),
		Sections:    make(map[string]Section, len(input.Sections)),
	}

	for _, course := range input.Courses {
		if _, ok := tables.Courses[course.ID]; ok {
			return Tables{}, fmt.Errorf("duplicate course id: %v", course.ID)
		}
		tables.Courses[course.ID] = course
	}

	for _, instructor := range input.Instructors {
		if _, ok := tables.Instructors[instructor.ID]; ok {
			return Tables{}, fmt.Errorf("duplicate instructor id: %v", instructor.ID)
		}
		tables.Instructors[instructor.ID] = instructor
		tables.InstructorOrder = append(tables.InstructorOrder, instructor.ID)
	}

	for _, room := range input.Rooms {
		if _, ok := tables.Rooms[room.ID]; ok {
			return Tables{}, fmt.Errorf("duplicate room id: %v", room.ID)
		}
		tables.Rooms[room.ID] = room
		tables.RoomOrder = append(tables.RoomOrder, room.ID)
	}

	dayPositions := make(map[string]int)
	for _, slot := range input.TimeSlots {
		if _, ok := tables.TimeSlots[slot.ID]; ok {
			return Tables{}, fmt.Errorf("duplicate timeslot id: %v", slot.ID)
		}
		slot.Position = dayPositions[slot.Day]
		dayPositions[slot.Day]++
		tables.TimeSlots[slot.ID] = slot
		tables.SlotOrder = append(tables.SlotOrder, slot.ID)
	}

	for _, section := range input.Sections {
		if _, ok := tables.Sections[section.ID]; ok {
			return Tables{}, fmt.Errorf("duplicate section id: %v", section.ID)
		}
		tables.Sections[section.ID] = section
	}

	return tables, nil
}

// QualifiedInstructors returns, in input order, the instructors qualified to
// teach the course
func (t Tables) QualifiedInstructors(courseID string) []Instructor {
	return lo.FilterMap(t.InstructorOrder, func(id string, _ int) (Instructor, bool) {
		instructor := t.Instructors[id]
		return instructor, instructor.CanTeach(courseID)
	})
}

// RoomsOfType returns, in input order, the rooms of the given type
func (t Tables) RoomsOfType(roomType string) []Room {
	return lo.FilterMap(t.RoomOrder, func(id string, _ int) (Room, bool) {
		room := t.Rooms[id]
		return room, room.Type == roomType
	})
}
