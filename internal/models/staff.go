package models

import (
	"strings"
	"time"
)

// Staff represents a teacher or administrator stored in the staff table.
type Staff struct {
	ID               int64     `db:"id" json:"id"`
	StaffID          string    `db:"staff_id" json:"staff_id"`
	Name             string    `db:"name" json:"name"`
	Email            *string   `db:"email" json:"email,omitempty"`
	PasswordHash     string    `db:"password_hash" json:"-"`
	IsAdmin          bool      `db:"is_admin" json:"is_admin"`
	IsClassTeacher   bool      `db:"is_class_teacher" json:"is_class_teacher"`
	GradeAssigned    *string   `db:"grade_assigned" json:"grade_assigned,omitempty"`
	Subjects         *string   `db:"subjects" json:"subjects,omitempty"`
	SyllabusCoverage *string   `db:"syllabus_coverage" json:"syllabus_coverage,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// EmailAddress returns the stored email or an empty string.
func (s *Staff) EmailAddress() string {
	if s == nil || s.Email == nil {
		return ""
	}
	return strings.TrimSpace(*s.Email)
}

// NeedsRegistration reports whether first-time registration is still pending.
func (s *Staff) NeedsRegistration() bool {
	return s.EmailAddress() == "" || s.Subjects == nil || strings.TrimSpace(*s.Subjects) == ""
}

// StaffProfile holds the fields captured during first-time registration.
type StaffProfile struct {
	Email            string
	IsClassTeacher   bool
	GradeAssigned    *string
	Subjects         string
	SyllabusCoverage *string
}
