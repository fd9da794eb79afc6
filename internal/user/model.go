package user

import "time"

const (
	RoleAdmin   = "ADMIN"
	RoleStaff   = "STAFF"
	RoleStudent = "STUDENT"
)

// IsStaff reports whether role grants access to the admin panel.
func IsStaff(role string) bool {
	return role == RoleAdmin || role == RoleStaff
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Role         string    `json:"role"`
	StudentID    *string   `json:"studentId,omitempty"`
	GradeLevel   *string   `json:"gradeLevel,omitempty"`
	Section      *string   `json:"section,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
