package service

import (
	"context"
	"errors"
	"lms_backend/internal/model"
	"lms_backend/internal/util"
	"testing"
)

func TestCourseSlugLookup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	published := env.createCourse(t, "Intro to Go", 0, 1, true)
	draft := env.createCourse(t, "Draft Course", 0, 1, false)

	if published.Slug != util.EncodeSlug("Intro to Go", published.ID) {
		t.Fatalf("slug: got %q", published.Slug)
	}

	otherTenant := &Actor{UserID: "inst-1", Role: model.Instructor, TenantID: "tenant-b"}

	tests := []struct {
		name   string
		tenant string
		slug   string
		viewer *Actor
		want   error
	}{
		{"published for anonymous", testTenant, published.Slug, nil, nil},
		{"any prefix resolves the id", testTenant, util.EncodeSlug("renamed", published.ID), nil, nil},
		{"bare id", testTenant, util.DecodeSlug(published.Slug), nil, nil},
		{"draft hidden from learner", testTenant, draft.Slug, learner, util.ErrCourseNotFound},
		{"draft visible to author", testTenant, draft.Slug, instructor, nil},
		{"wrong tenant", "tenant-b", published.Slug, otherTenant, util.ErrCourseNotFound},
		{"no id in slug", testTenant, "intro-to-go", nil, util.ErrCourseNotFound},
		{"unknown id", testTenant, "intro-to-go-999999", nil, util.ErrCourseNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.courses.GetCourseBySlug(ctx, tt.tenant, tt.slug, tt.viewer)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestListPublishedScopedToTenant(t *testing.T) {
	env := newTestEnv(t)
	env.createCourse(t, "First", 0, 0, true)
	env.createCourse(t, "Second", 500, 0, true)
	env.createCourse(t, "Hidden", 0, 0, false)

	items, total, err := env.courses.ListPublished(testTenant, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("got %d items (total %d), want 2", len(items), total)
	}
	for _, it := range items {
		if it.Slug != util.EncodeSlug(it.Title, it.ID) {
			t.Fatalf("item %q has slug %q", it.Title, it.Slug)
		}
	}

	items, total, err = env.courses.ListPublished("tenant-b", 1, 10)
	if err != nil {
		t.Fatalf("list other tenant: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Fatalf("other tenant: got %d items, want none", len(items))
	}
}

func TestReorderLessons(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.createCourse(t, "Ordering", 0, 3, true)
	a, b, c := course.Lessons[0].ID, course.Lessons[1].ID, course.Lessons[2].ID

	lessons, err := env.courses.ReorderLessons(ctx, instructor, course.ID, []uint{c, a, b})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	got := []uint{lessons[0].ID, lessons[1].ID, lessons[2].ID}
	if got[0] != c || got[1] != a || got[2] != b {
		t.Fatalf("order: got %v, want [%d %d %d]", got, c, a, b)
	}

	invalid := [][]uint{
		{a, b},
		{a, a, b},
		{a, b, 9999},
	}
	for _, ids := range invalid {
		if _, err := env.courses.ReorderLessons(ctx, instructor, course.ID, ids); !errors.Is(err, util.ErrInvalidLessonOrder) {
			t.Fatalf("reorder %v: got %v, want ErrInvalidLessonOrder", ids, err)
		}
	}

	if _, err := env.courses.ReorderLessons(ctx, learner, course.ID, []uint{a, b, c}); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("learner reorder: got %v, want ErrPermissionDenied", err)
	}
}

func TestEnrollRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	free := env.createCourse(t, "Free", 0, 1, true)
	paid := env.createCourse(t, "Paid", 1999, 1, true)
	draft := env.createCourse(t, "Draft", 0, 1, false)

	first, err := env.enrollments.Enroll(ctx, learner, free.Slug)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	again, err := env.enrollments.Enroll(ctx, learner, free.Slug)
	if err != nil {
		t.Fatalf("enroll again: %v", err)
	}
	if first.ID != again.ID || again.Source != model.EnrollmentFree {
		t.Fatalf("re-enrolling should return the same record, got %d and %d", first.ID, again.ID)
	}

	if _, err := env.enrollments.Enroll(ctx, learner, paid.Slug); !errors.Is(err, util.ErrPaymentRequired) {
		t.Fatalf("paid course: got %v, want ErrPaymentRequired", err)
	}
	if _, err := env.enrollments.Enroll(ctx, learner, draft.Slug); !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("draft course: got %v, want ErrCourseNotFound", err)
	}
}
