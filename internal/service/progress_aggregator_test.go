package service

import (
	"lms_backend/internal/model"
	"math"
	"reflect"
	"testing"
)

func lessonsWithIDs(ids ...uint) []model.Lesson {
	lessons := make([]model.Lesson, len(ids))
	for i, id := range ids {
		lessons[i].ID = id
	}
	return lessons
}

func row(lessonID uint, completed bool) model.LessonProgress {
	return model.LessonProgress{LessonID: lessonID, Completed: completed}
}

func TestSummarizeProgressEmptyCourse(t *testing.T) {
	got := SummarizeProgress(nil, []model.LessonProgress{row(1, true)})
	if got.Percent != 0 {
		t.Fatalf("percent: got %v, want 0", got.Percent)
	}
	if got.AllCompleted {
		t.Fatalf("allCompleted: got true, want false for a course without lessons")
	}
	if len(got.CompletedIndices) != 0 {
		t.Fatalf("completedIndices: got %v, want empty", got.CompletedIndices)
	}
}

func TestSummarizeProgressEmptyCoursePolicy(t *testing.T) {
	got := SummarizeProgressWithPolicy(nil, nil, SummaryPolicy{EmptyCourseCompleted: true})
	if !got.AllCompleted {
		t.Fatalf("allCompleted: got false, want true when policy treats empty courses as completed")
	}
	if got.Percent != 0 {
		t.Fatalf("percent: got %v, want 0", got.Percent)
	}
}

func TestSummarizeProgressIgnoresUnknownLessons(t *testing.T) {
	lessons := lessonsWithIDs(1, 2, 3)
	rows := []model.LessonProgress{row(1, true), row(2, false), row(99, true)}

	got := SummarizeProgress(lessons, rows)

	if !reflect.DeepEqual(got.CompletedIndices, []int{0}) {
		t.Fatalf("completedIndices: got %v, want [0]", got.CompletedIndices)
	}
	if math.Abs(got.Percent-100.0/3) > 1e-9 {
		t.Fatalf("percent: got %v, want %v", got.Percent, 100.0/3)
	}
	if got.AllCompleted {
		t.Fatalf("allCompleted: got true, want false")
	}
}

func TestSummarizeProgress(t *testing.T) {
	tests := []struct {
		name        string
		lessons     []model.Lesson
		rows        []model.LessonProgress
		wantIndices []int
		wantPercent float64
		wantAll     bool
	}{
		{
			name:        "no progress",
			lessons:     lessonsWithIDs(10, 20),
			wantIndices: []int{},
			wantPercent: 0,
		},
		{
			name:        "indices follow lesson order not ids",
			lessons:     lessonsWithIDs(30, 10, 20),
			rows:        []model.LessonProgress{row(20, true), row(30, true)},
			wantIndices: []int{0, 2},
			wantPercent: 200.0 / 3,
		},
		{
			name:        "all completed",
			lessons:     lessonsWithIDs(1, 2),
			rows:        []model.LessonProgress{row(2, true), row(1, true)},
			wantIndices: []int{0, 1},
			wantPercent: 100,
			wantAll:     true,
		},
		{
			name:        "duplicate rows count once",
			lessons:     lessonsWithIDs(1, 2),
			rows:        []model.LessonProgress{row(1, true), row(1, true)},
			wantIndices: []int{0},
			wantPercent: 50,
		},
		{
			name:        "reopened lesson",
			lessons:     lessonsWithIDs(1, 2),
			rows:        []model.LessonProgress{row(1, false), row(2, true)},
			wantIndices: []int{1},
			wantPercent: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SummarizeProgress(tt.lessons, tt.rows)
			if !reflect.DeepEqual(got.CompletedIndices, tt.wantIndices) {
				t.Errorf("completedIndices: got %v, want %v", got.CompletedIndices, tt.wantIndices)
			}
			if math.Abs(got.Percent-tt.wantPercent) > 1e-9 {
				t.Errorf("percent: got %v, want %v", got.Percent, tt.wantPercent)
			}
			if got.AllCompleted != tt.wantAll {
				t.Errorf("allCompleted: got %v, want %v", got.AllCompleted, tt.wantAll)
			}
			if got.TotalLessons != len(tt.lessons) || got.CompletedCount != len(tt.wantIndices) {
				t.Errorf("counts: got %d/%d, want %d/%d", got.CompletedCount, got.TotalLessons, len(tt.wantIndices), len(tt.lessons))
			}
		})
	}
}
