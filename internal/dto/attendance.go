package dto

// LogoutReasons are the choices offered on the sign-out page.
var LogoutReasons = []string{"Left early", "Sick", "Personal", "Other"}

// SignOutForm carries the optional free-text reason for signing out.
type SignOutForm struct {
	Reason string `form:"reason" validate:"omitempty,max=200"`
}

// ExportQuery selects the download format for reports.
type ExportQuery struct {
	Format string `form:"format"`
}
