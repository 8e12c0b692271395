package model

// UserRole 由外部认证服务在令牌中声明
type UserRole string

const (
	Learner    UserRole = "learner"
	Instructor UserRole = "instructor"
	Admin      UserRole = "admin"
)
