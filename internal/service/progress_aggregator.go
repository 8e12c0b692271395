package service

import (
	"lms_backend/internal/model"
	"sort"
)

// SummaryPolicy 汇总时的产品策略
type SummaryPolicy struct {
	// 没有任何课时的课程是否算作“已完成”
	EmptyCourseCompleted bool
}

// SummarizeProgress 使用默认策略（空课程不算完成）
func SummarizeProgress(lessons []model.Lesson, rows []model.LessonProgress) model.CourseProgressSummary {
	return SummarizeProgressWithPolicy(lessons, rows, SummaryPolicy{})
}

// SummarizeProgressWithPolicy 由课程的有序课时与用户进度记录计算完成情况。
// 完成下标是课时在列表中的位置而非课时 ID；引用了不在列表中课时的记录会被忽略。
func SummarizeProgressWithPolicy(lessons []model.Lesson, rows []model.LessonProgress, policy SummaryPolicy) model.CourseProgressSummary {
	position := make(map[uint]int, len(lessons))
	for i, l := range lessons {
		if _, seen := position[l.ID]; !seen {
			position[l.ID] = i
		}
	}

	completed := make(map[int]struct{})
	for _, row := range rows {
		if !row.Completed {
			continue
		}
		if idx, ok := position[row.LessonID]; ok {
			completed[idx] = struct{}{}
		}
	}

	indices := make([]int, 0, len(completed))
	for idx := range completed {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	summary := model.CourseProgressSummary{
		CompletedIndices: indices,
		CompletedCount:   len(indices),
		TotalLessons:     len(lessons),
	}

	if len(lessons) == 0 {
		summary.AllCompleted = policy.EmptyCourseCompleted
		return summary
	}

	summary.Percent = 100 * float64(len(indices)) / float64(len(lessons))
	summary.AllCompleted = len(indices) == len(lessons)
	return summary
}
