package model

import "time"

// Role controls which endpoints a user may call
type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
	RoleAdmin   Role = "admin"
)

// IsValid reports whether the role is one of the known values
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleMentor, RoleAdmin:
		return true
	default:
		return false
	}
}

// User is an account profile. PasswordHash never leaves the server.
type User struct {
	ID           string     `json:"id" bson:"_id,omitempty"`
	Email        string     `json:"email" bson:"email"`
	FirstName    string     `json:"firstName" bson:"firstName"`
	LastName     string     `json:"lastName" bson:"lastName"`
	Role         Role       `json:"role" bson:"role"`
	PasswordHash string     `json:"-" bson:"passwordHash"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
}

// Student is the roster entry carrying the academic record for one subject.
// The academic fields feed risk classification as signals.
type Student struct {
	SubjectID     string    `json:"subjectId" bson:"_id"`
	Name          string    `json:"name" bson:"name"`
	MentorID      string    `json:"mentorId,omitempty" bson:"mentorId,omitempty"`
	AttendancePct *float64  `json:"attendancePct,omitempty" bson:"attendancePct,omitempty"`
	BacklogCount  *int      `json:"backlogCount,omitempty" bson:"backlogCount,omitempty"`
	GPA           *float64  `json:"gpa,omitempty" bson:"gpa,omitempty"`
	FeeStatus     FeeStatus `json:"feeStatus,omitempty" bson:"feeStatus,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}
