package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/limaJavier/csp-timetabling/pkg/model"
	"github.com/limaJavier/csp-timetabling/pkg/solver"
)

var dayOrder = map[string]int{
	"Sunday":    0,
	"Monday":    1,
	"Tuesday":   2,
	"Wednesday": 3,
	"Thursday":  4,
}

type timetableEntry struct {
	Course     string `json:"course"`
	CourseName string `json:"courseName"`
	Number     int    `json:"number"`
	Day        string `json:"day"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Room       string `json:"room"`
	Instructor string `json:"instructor"`
}

func main() {
	// Define arguments
	filePathPtr := flag.String("file", "", "Path to the input JSON file")
	outFilePathPtr := flag.String("out", "", "Path to the file where the timetable will be written; if empty, it'll be written into the Standard Output")
	sectionsPtr := flag.String("sections", "", "Comma-separated section IDs to schedule; all sections from the input if empty")
	timeoutPtr := flag.Int("timeout", 300, "Search wall-clock budget in seconds")
	seedPtr := flag.Int64("seed", 0, "Seed for the value-ordering shuffle; 0 seeds from the clock")
	scoreConfigPtr := flag.String("config", "", "Optional YAML file overriding the score weights")
	flag.Parse()

	filePath := *filePathPtr
	outFile := *outFilePathPtr
	timeout := *timeoutPtr

	// Validate arguments
	if filePath == "" {
		log.Fatal("an input file must be specified")
	} else if timeout <= 0 {
		log.Fatalf("timeout must be positive: %v", timeout)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	defer logger.Sync()

	// Extract input
	input, err := model.InputFromJson(filePath)
	if err != nil {
		log.Fatalf("cannot parse input file: %v", err)
	}
	tables, err := input.Tables()
	if err != nil {
		log.Fatalf("invalid input records: %v", err)
	}

	sectionIDs := lo.Map(input.Sections, func(section model.Section, _ int) string { return section.ID })
	if *sectionsPtr != "" {
		sectionIDs = lo.Map(strings.Split(*sectionsPtr, ","), func(id string, _ int) string {
			return strings.TrimSpace(id)
		})
	}

	scoreConfig := solver.DefaultScoreConfig()
	if *scoreConfigPtr != "" {
		if scoreConfig, err = solver.LoadScoreConfig(*scoreConfigPtr); err != nil {
			log.Fatalf("cannot load score config: %v", err)
		}
	}

	// Build the problem
	builder := model.NewProblemBuilder(tables, logger)
	lectures := builder.BuildLectures(sectionIDs)
	domains := builder.BuildDomains(lectures)

	// Solve
	solverConfig := solver.DefaultSolverConfig()
	solverConfig.Timeout = time.Duration(timeout) * time.Second
	solverConfig.Seed = *seedPtr
	solverConfig.OnProgress = func(progress solver.Progress) {
		logger.Info("searching",
			zap.Int("assigned", progress.Assigned),
			zap.Int("total", progress.Total),
			zap.Uint64("iterations", progress.Iterations))
	}

	engine := solver.NewSolver(lectures, domains, solverConfig)
	result, err := engine.Solve()
	if err != nil {
		log.Fatalf("an error occurred during timetable construction: %v", err)
	}

	logger.Info("search finished",
		zap.String("run", result.RunID),
		zap.Stringer("status", result.Status),
		zap.Uint64("iterations", result.Iterations),
		zap.Duration("elapsed", result.Elapsed))

	if result.Status != solver.StatusSolved {
		fmt.Printf("No solution: %v (best partial assignment: %v/%v)\n",
			result.Status, result.BestAssigned, len(lectures))
		os.Exit(20)
	}

	// Verify timetable correctness
	if conflicts := solver.FindAllConflicts(result.Assignment); len(conflicts) > 0 {
		for _, conflict := range conflicts {
			logger.Error("constraint violation",
				zap.String("kind", string(conflict.Kind)),
				zap.String("resource", conflict.Resource),
				zap.String("timeslot", conflict.TimeSlot))
		}
		os.Exit(15)
	}

	// Report quality
	scorer := solver.NewScorer(tables.TimeSlots, scoreConfig)
	breakdown := scorer.Score(result.Assignment)
	fmt.Printf("Quality score: %.2f/%.0f\n", breakdown.Total, breakdown.Base)
	fmt.Printf("  - Gap penalty:           -%.2f\n", breakdown.GapPenalty)
	fmt.Printf("  + Balance bonus:         +%.2f\n", breakdown.BalanceBonus)
	fmt.Printf("  - Time preference:       -%.2f\n", breakdown.TimePenalty)
	fmt.Printf("  - Room distance penalty: -%.2f\n", breakdown.RoomDistancePenalty)

	// Build output from the assignment
	perSectionTimetable := make(map[string][]timetableEntry)
	for key, value := range result.Assignment {
		slot := tables.TimeSlots[value.TimeSlot]
		course := tables.Courses[key.Course]

		perSectionTimetable[key.Section] = append(perSectionTimetable[key.Section], timetableEntry{
			Course:     key.Course,
			CourseName: course.Name,
			Number:     key.Number,
			Day:        slot.Day,
			Start:      slot.Start,
			End:        slot.End,
			Room:       value.Room,
			Instructor: value.Instructor,
		})
	}

	for _, entries := range perSectionTimetable {
		slices.SortFunc(entries, func(a, b timetableEntry) int {
			if comparison := dayOrder[a.Day] - dayOrder[b.Day]; comparison != 0 {
				return comparison
			}
			return strings.Compare(a.Start, b.Start)
		})
	}

	// Marshal output into json
	perSectionTimetableJson, err := json.MarshalIndent(perSectionTimetable, "", "  ")
	if err != nil {
		log.Fatalf("an error occurred while building output json: %v", err)
	}

	// Verify outfile is empty, if so then write the results to the Standard Output
	if outFile == "" {
		fmt.Println(string(perSectionTimetableJson))
	} else if err := os.WriteFile(outFile, perSectionTimetableJson, 0666); err != nil {
		log.Fatalf("an error occurred while writing to the output file: %v", err)
	}
}
