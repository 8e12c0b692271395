package util

import "errors"

var (
	ErrPermissionDenied        = errors.New("permission denied")
	ErrCourseNotFound          = errors.New("course not found")
	ErrLessonNotFound          = errors.New("lesson not found")
	ErrQuestionNotFound        = errors.New("question not found")
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptAlreadyCompleted = errors.New("attempt already completed")
	ErrAttemptConflict         = errors.New("concurrent attempt creation, please retry")
	ErrQuizHasNoQuestions      = errors.New("quiz has no questions")
	ErrNotEnrolled             = errors.New("not enrolled in course")
	ErrPaymentRequired         = errors.New("course requires payment")
	ErrCourseIsFree            = errors.New("course is free, enroll directly")
	ErrCourseNotPublished      = errors.New("course not published")
	ErrCertificateNotFound     = errors.New("certificate not found")
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrUnknownProvider         = errors.New("unknown payment provider")
	ErrInvalidSignature        = errors.New("invalid webhook signature")
	ErrLockNotAcquired         = errors.New("lock not acquired")
	ErrInvalidLessonOrder      = errors.New("lesson order must list every lesson of the course exactly once")
)

var (
	ErrAlreadyEnrolled = errors.New("already enrolled in course")
	ErrAmountMismatch  = errors.New("payment amount mismatch")
	ErrInvalidQuestion = errors.New("question needs at least two options and a valid correct index")
)
