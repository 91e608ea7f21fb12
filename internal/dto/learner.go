package dto

// LearnerForm creates or updates an individual learner.
type LearnerForm struct {
	AdmissionNo   string `form:"admission_no" validate:"required,max=50"`
	FullName      string `form:"full_name" validate:"required,max=150"`
	Gender        string `form:"gender" validate:"required,oneof=M F"`
	DateOfBirth   string `form:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Grade         string `form:"grade" validate:"required"`
	GuardianName  string `form:"guardian_name" validate:"omitempty,max=150"`
	GuardianPhone string `form:"guardian_phone" validate:"omitempty,max=50"`
	Address       string `form:"address"`
	MedicalNotes  string `form:"medical_notes"`
}

// LearnerListQuery filters the learner list and export by grade.
type LearnerListQuery struct {
	Grade string `form:"grade"`
}

// LearnerSnapshotForm records an aggregate headcount. Missing counts are zero
// and a missing total is the sum of the counts.
type LearnerSnapshotForm struct {
	ECDEGirls       *int `form:"ecde_girls" validate:"omitempty,min=0"`
	ECDEBoys        *int `form:"ecde_boys" validate:"omitempty,min=0"`
	PrimaryGirls    *int `form:"primary_girls" validate:"omitempty,min=0"`
	PrimaryBoys     *int `form:"primary_boys" validate:"omitempty,min=0"`
	JSSGirls        *int `form:"jss_girls" validate:"omitempty,min=0"`
	JSSBoys         *int `form:"jss_boys" validate:"omitempty,min=0"`
	TotalPopulation *int `form:"total_population" validate:"omitempty,min=0"`
}
