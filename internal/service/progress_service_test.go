package service

import (
	"context"
	"errors"
	"lms_backend/internal/model"
	"lms_backend/internal/util"
	"testing"
)

func TestSetLessonCompletionUpsertsSingleRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.createCourse(t, "Upsert", 0, 2, true)
	env.enroll(t, learner, course)
	lessonID := course.Lessons[1].ID

	steps := []struct {
		completed   bool
		wantIndices []int
		wantPercent float64
	}{
		{true, []int{1}, 50},
		{true, []int{1}, 50},
		{false, []int{}, 0},
		{true, []int{1}, 50},
	}
	for i, step := range steps {
		view, err := env.progress.SetLessonCompletion(ctx, learner, course.Slug, lessonID, step.completed)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if len(view.Summary.CompletedIndices) != len(step.wantIndices) {
			t.Fatalf("step %d: completed indices %v, want %v", i, view.Summary.CompletedIndices, step.wantIndices)
		}
		for j := range step.wantIndices {
			if view.Summary.CompletedIndices[j] != step.wantIndices[j] {
				t.Fatalf("step %d: completed indices %v, want %v", i, view.Summary.CompletedIndices, step.wantIndices)
			}
		}
		if view.Summary.Percent != step.wantPercent {
			t.Fatalf("step %d: percent %v, want %v", i, view.Summary.Percent, step.wantPercent)
		}
	}

	var count int64
	if err := env.db.Model(&model.LessonProgress{}).Where("user_id = ? AND lesson_id = ?", learner.UserID, lessonID).Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("progress rows: got %d, want 1", count)
	}
}

func TestGetCourseProgressComputedFromRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.createCourse(t, "Computed", 0, 3, true)
	env.enroll(t, learner, course)

	// 直接写入进度记录，包括一条指向已删除课时的记录
	if _, err := env.repos.progress.Upsert(learner.UserID, course.Lessons[2].ID, course.ID, true, course.CreatedAt); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := env.repos.progress.Upsert(learner.UserID, 424242, course.ID, true, course.CreatedAt); err != nil {
		t.Fatalf("upsert orphan: %v", err)
	}

	view, err := env.progress.GetCourseProgress(ctx, learner, course.Slug)
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if view.Summary.CompletedCount != 1 || view.Summary.TotalLessons != 3 {
		t.Fatalf("summary: got %+v", view.Summary)
	}
	if len(view.Lessons) != 3 || !view.Lessons[2].Completed || view.Lessons[0].Completed {
		t.Fatalf("lessons: got %+v", view.Lessons)
	}
	if view.Summary.AllCompleted {
		t.Fatalf("course should not be completed")
	}
}

func TestCompletingCourseIssuesOneCertificate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.createCourse(t, "Certified", 0, 2, true)
	env.enroll(t, learner, course)

	for _, l := range course.Lessons {
		if _, err := env.progress.SetLessonCompletion(ctx, learner, course.Slug, l.ID, true); err != nil {
			t.Fatalf("complete lesson %d: %v", l.ID, err)
		}
	}
	// 再次完成不会重复签发
	view, err := env.progress.SetLessonCompletion(ctx, learner, course.Slug, course.Lessons[0].ID, true)
	if err != nil {
		t.Fatalf("complete again: %v", err)
	}
	if !view.Summary.AllCompleted {
		t.Fatalf("course should be completed")
	}

	certs, err := env.certificates.ListMine(learner)
	if err != nil {
		t.Fatalf("list certificates: %v", err)
	}
	if len(certs) != 1 {
		t.Fatalf("certificates: got %d, want 1", len(certs))
	}

	verified, err := env.certificates.GetByCode(certs[0].Code)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified.CourseTitle != "Certified" || verified.ImageURL == "" {
		t.Fatalf("certificate: got %+v", verified)
	}
	if _, err := env.certificates.GetByCode("not-a-code"); !errors.Is(err, util.ErrCertificateNotFound) {
		t.Fatalf("unknown code: got %v, want ErrCertificateNotFound", err)
	}
}

func TestSetLessonCompletionRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.createCourse(t, "Guarded", 0, 1, true)
	other := env.createCourse(t, "Other", 0, 1, true)
	lessonID := course.Lessons[0].ID

	outsider := &Actor{UserID: "learner-1", Role: model.Learner, TenantID: "tenant-b"}

	tests := []struct {
		name     string
		actor    *Actor
		slug     string
		lessonID uint
		enroll   bool
		want     error
	}{
		{"not enrolled", learner, course.Slug, lessonID, false, util.ErrNotEnrolled},
		{"other tenant", outsider, course.Slug, lessonID, false, util.ErrCourseNotFound},
		{"lesson from another course", learner, course.Slug, other.Lessons[0].ID, true, util.ErrLessonNotFound},
		{"bad slug", learner, "no-digits", lessonID, true, util.ErrCourseNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.enroll {
				env.enroll(t, tt.actor, course)
			}
			_, err := env.progress.SetLessonCompletion(ctx, tt.actor, tt.slug, tt.lessonID, true)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEmptyCoursePolicyHotReload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.createCourse(t, "Empty", 0, 0, true)
	env.enroll(t, learner, course)

	view, err := env.progress.GetCourseProgress(ctx, learner, course.Slug)
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if view.Summary.AllCompleted {
		t.Fatalf("empty course should not count as completed by default")
	}

	env.progress.SetSummaryPolicy(SummaryPolicy{EmptyCourseCompleted: true})
	view, err = env.progress.GetCourseProgress(ctx, learner, course.Slug)
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if !view.Summary.AllCompleted {
		t.Fatalf("empty course should count as completed once the policy allows it")
	}

	mine, err := env.enrollments.ListMyCourses(learner)
	if err != nil {
		t.Fatalf("list my courses: %v", err)
	}
	if len(mine) != 1 || !mine[0].Progress.AllCompleted {
		t.Fatalf("my courses: got %+v", mine)
	}
}
