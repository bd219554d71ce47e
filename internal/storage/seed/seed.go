// Package seed loads a small, fixed set of students for development and
// demos.
package seed

import (
	"context"
	"fmt"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Students is the sample data set: departments repeat and GPAs vary so
// search and sort have something to show.
var Students = []types.Student{
	{Name: "John Smith", RollNumber: 1001, Email: "john.smith@university.edu", Department: "Computer Science", GPA: 3.8},
	{Name: "Sarah Johnson", RollNumber: 1002, Email: "sarah.johnson@university.edu", Department: "Electrical Engineering", GPA: 3.9},
	{Name: "Michael Brown", RollNumber: 1003, Email: "michael.brown@university.edu", Department: "Mechanical Engineering", GPA: 3.2},
	{Name: "Emily Davis", RollNumber: 1004, Email: "emily.davis@university.edu", Department: "Computer Science", GPA: 3.7},
	{Name: "David Wilson", RollNumber: 1005, Email: "david.wilson@university.edu", Department: "Business Administration", GPA: 3.5},
	{Name: "Lisa Anderson", RollNumber: 1006, Email: "lisa.anderson@university.edu", Department: "Mathematics", GPA: 3.6},
	{Name: "Robert Taylor", RollNumber: 1007, Email: "robert.taylor@university.edu", Department: "Physics", GPA: 3.4},
	{Name: "Jennifer Martinez", RollNumber: 1008, Email: "jennifer.martinez@university.edu", Department: "Chemistry", GPA: 3.1},
	{Name: "Christopher Lee", RollNumber: 1009, Email: "christopher.lee@university.edu", Department: "Civil Engineering", GPA: 3.3},
	{Name: "Amanda Garcia", RollNumber: 1010, Email: "amanda.garcia@university.edu", Department: "Computer Science", GPA: 3.8},
}

// Store is what Populate needs from a backend.
type Store interface {
	CreateStudent(ctx context.Context, student types.Student) (types.Student, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// Populate empties the store and inserts Students, stopping at the first
// failure. It returns how many records were removed and inserted.
func Populate(ctx context.Context, store Store) (deleted int64, inserted int, err error) {
	deleted, err = store.DeleteAll(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("seed: clear: %w", err)
	}

	for _, s := range Students {
		if _, err := store.CreateStudent(ctx, s); err != nil {
			return deleted, inserted, fmt.Errorf("seed: insert %d: %w", s.RollNumber, err)
		}
		inserted++
	}
	return deleted, inserted, nil
}
