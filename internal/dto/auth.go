package dto

// LoginForm is posted by the login page.
type LoginForm struct {
	StaffID    string `form:"staff_id" validate:"required,max=50"`
	Password   string `form:"password" validate:"required"`
	RememberMe bool   `form:"remember_me"`
}

// RegistrationForm completes a staff profile on first login.
type RegistrationForm struct {
	Email            string `form:"email" validate:"required,email,max=120"`
	IsClassTeacher   bool   `form:"is_class_teacher"`
	GradeAssigned    string `form:"grade_assigned" validate:"omitempty,max=50"`
	Subjects         string `form:"subjects" validate:"required,max=200"`
	SyllabusCoverage string `form:"syllabus_coverage"`
}
