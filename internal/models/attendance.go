package models

import "time"

// Attendance is one sign-in event. LogoutTime is nil while the row is open.
type Attendance struct {
	ID           int64      `db:"id" json:"id"`
	StaffID      string     `db:"staff_id" json:"staff_id"`
	LoginTime    time.Time  `db:"login_time" json:"login_time"`
	LogoutTime   *time.Time `db:"logout_time" json:"logout_time,omitempty"`
	LogoutReason *string    `db:"logout_reason" json:"logout_reason,omitempty"`
}

// Open reports whether the staff member has not signed out yet.
func (a *Attendance) Open() bool {
	return a != nil && a.LogoutTime == nil
}

// AttendanceRecord extends the row with the staff display name.
type AttendanceRecord struct {
	Attendance
	StaffName string `db:"staff_name" json:"staff_name"`
}

// OpenAttendance is an open row joined with the contact details used for reminders.
type OpenAttendance struct {
	Attendance
	StaffName string  `db:"staff_name" json:"staff_name"`
	Email     *string `db:"email" json:"email,omitempty"`
}

// AttendanceStatus summarises a staff member's current state.
type AttendanceStatus struct {
	StaffID    string      `json:"staff_id"`
	SignedIn   bool        `json:"signed_in"`
	Open       *Attendance `json:"open,omitempty"`
	LastSignIn *time.Time  `json:"last_sign_in,omitempty"`
}

// EarlyDeparture counts weekday sign-outs before the cutoff for one staff member.
type EarlyDeparture struct {
	StaffID   string `json:"staff_id"`
	StaffName string `json:"staff_name,omitempty"`
	Count     int    `json:"count"`
}
