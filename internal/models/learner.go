package models

import "time"

// Grade levels offered by the school, in display order.
var GradeLevels = []string{
	"Playgroup", "PP1", "PP2",
	"Grade 1", "Grade 2", "Grade 3", "Grade 4", "Grade 5", "Grade 6",
	"Grade 7", "Grade 8", "Grade 9",
}

// Education bands used by the headcount chart.
const (
	BandECDE    = "ECDE"
	BandPrimary = "Primary"
	BandJSS     = "JSS"
)

// Bands lists the headcount categories in chart order.
var Bands = []string{BandECDE, BandPrimary, BandJSS}

// GradeBand maps a grade level to its education band, or "" when unknown.
func GradeBand(grade string) string {
	switch grade {
	case "Playgroup", "PP1", "PP2":
		return BandECDE
	case "Grade 1", "Grade 2", "Grade 3", "Grade 4", "Grade 5", "Grade 6":
		return BandPrimary
	case "Grade 7", "Grade 8", "Grade 9":
		return BandJSS
	default:
		return ""
	}
}

// IsGradeLevel reports whether grade is one of GradeLevels.
func IsGradeLevel(grade string) bool {
	return GradeBand(grade) != ""
}

// Learner is an individual learner biodata row.
type Learner struct {
	ID            int64      `db:"id" json:"id"`
	AdmissionNo   string     `db:"admission_no" json:"admission_no"`
	FullName      string     `db:"full_name" json:"full_name"`
	Gender        string     `db:"gender" json:"gender"`
	DateOfBirth   *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Grade         string     `db:"grade" json:"grade"`
	GuardianName  *string    `db:"guardian_name" json:"guardian_name,omitempty"`
	GuardianPhone *string    `db:"guardian_phone" json:"guardian_phone,omitempty"`
	Address       *string    `db:"address" json:"address,omitempty"`
	MedicalNotes  *string    `db:"medical_notes" json:"medical_notes,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// LearnerFilter narrows learner listings.
type LearnerFilter struct {
	Grade string
}

// GradeGroup is the learners of one grade.
type GradeGroup struct {
	Grade    string    `json:"grade"`
	Learners []Learner `json:"learners"`
}

// LearnerSnapshot is an aggregate headcount captured by an administrator.
type LearnerSnapshot struct {
	ID              int64     `db:"id" json:"id"`
	ECDEGirls       int       `db:"ecde_girls" json:"ecde_girls"`
	ECDEBoys        int       `db:"ecde_boys" json:"ecde_boys"`
	PrimaryGirls    int       `db:"primary_girls" json:"primary_girls"`
	PrimaryBoys     int       `db:"primary_boys" json:"primary_boys"`
	JSSGirls        int       `db:"jss_girls" json:"jss_girls"`
	JSSBoys         int       `db:"jss_boys" json:"jss_boys"`
	TotalPopulation int       `db:"total_population" json:"total_population"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Headcount is the dashboard chart data: girls and boys per band plus a total.
type Headcount struct {
	Categories []string   `json:"categories"`
	Girls      []int      `json:"girls"`
	Boys       []int      `json:"boys"`
	Total      int        `json:"total_population"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

// Empty reports whether no learner data has been recorded.
func (h *Headcount) Empty() bool {
	return h == nil || h.Categories == nil
}

// GradeGenderCount is one row of the learner census grouped by grade and gender.
type GradeGenderCount struct {
	Grade  string `db:"grade"`
	Gender string `db:"gender"`
	Count  int    `db:"count"`
}
