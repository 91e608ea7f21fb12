package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/staff-attendance/internal/dto"
	"github.com/noah-isme/staff-attendance/internal/models"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
)

type authStaffRepository interface {
	Count(ctx context.Context) (int, error)
	FindByStaffID(ctx context.Context, staffID string) (*models.Staff, error)
	CreateBatch(ctx context.Context, staff []models.Staff) error
	UpdateProfile(ctx context.Context, staffID string, profile models.StaffProfile) error
}

// SeedConfig describes the initial roster credentials.
type SeedConfig struct {
	DefaultPassword string
	AdminStaffID    string
	AdminPassword   string
}

// DefaultRoster is the teaching staff loaded into an empty database.
var DefaultRoster = []struct{ StaffID, Name string }{
	{"GFHKTS001", "Wilfred Lai"}, {"GFHKTS002", "Josephine Ochieng"},
	{"GFHKTS003", "Catherine Mwende"}, {"GFHKTS004", "Samuel Orimba"},
	{"GFHKTS005", "Melvine Ogada"}, {"GFHKTS006", "Evance Oduor"},
	{"GFHKTS007", "Emma Muthoka"}, {"GFHKTS008", "Pamela Aduka"},
	{"GFHKTS009", "Quinter Owuor"}, {"GFHKTS010", "Siprose Juma"},
	{"GFHKTS011", "Alice Nyahela"}, {"GFHKTS012", "Dorcus Oranga"},
	{"GFHKTS013", "Mable Wafula"}, {"GFHKTS014", "Vivian Omuoyo"},
	{"GFHKTS015", "Karilus Orao"}, {"GFHKTS016", "Tony Otieno"},
	{"GFHKTS017", "Walter Otieno"}, {"GFHKTS018", "Hilda Asiavugwa"},
}

// AuthService authenticates staff and manages their profiles.
type AuthService struct {
	repo      authStaffRepository
	validator *validator.Validate
	logger    *zap.Logger
	cost      int
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authStaffRepository, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{repo: repo, validator: validate, logger: logger, cost: bcrypt.DefaultCost}
}

// Authenticate matches the staff identifier exactly and checks the password.
func (s *AuthService) Authenticate(ctx context.Context, form dto.LoginForm) (*models.Staff, error) {
	if err := s.validator.Struct(form); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Staff ID and password are required.")
	}

	staff, err := s.repo.FindByStaffID(ctx, form.StaffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid credentials")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch staff")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(form.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid credentials")
	}
	return staff, nil
}

// GetStaff loads a staff member by identifier.
func (s *AuthService) GetStaff(ctx context.Context, staffID string) (*models.Staff, error) {
	staff, err := s.repo.FindByStaffID(ctx, staffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Invalid Staff ID")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch staff")
	}
	return staff, nil
}

// Register completes the first-time profile. The grade is kept only for class teachers.
func (s *AuthService) Register(ctx context.Context, staffID string, form dto.RegistrationForm) (*models.Staff, error) {
	form.Email = strings.TrimSpace(form.Email)
	form.Subjects = strings.TrimSpace(form.Subjects)
	if err := s.validator.Struct(form); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "A valid email and your subjects are required.")
	}

	if _, err := s.GetStaff(ctx, staffID); err != nil {
		return nil, err
	}

	profile := models.StaffProfile{
		Email:          form.Email,
		IsClassTeacher: form.IsClassTeacher,
		Subjects:       form.Subjects,
	}
	if grade := strings.TrimSpace(form.GradeAssigned); form.IsClassTeacher && grade != "" {
		if !models.IsGradeLevel(grade) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "Unknown grade selected.")
		}
		profile.GradeAssigned = &grade
	}
	if coverage := strings.TrimSpace(form.SyllabusCoverage); coverage != "" {
		profile.SyllabusCoverage = &coverage
	}

	if err := s.repo.UpdateProfile(ctx, staffID, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save registration")
	}
	return s.GetStaff(ctx, staffID)
}

// Seed loads the default roster and the administrator when no staff exist.
// It returns the number of accounts created.
func (s *AuthService) Seed(ctx context.Context, cfg SeedConfig) (int, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count staff")
	}
	if total > 0 {
		return 0, nil
	}

	defaultHash, err := bcrypt.GenerateFromPassword([]byte(cfg.DefaultPassword), s.cost)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	adminHash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), s.cost)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	roster := make([]models.Staff, 0, len(DefaultRoster)+1)
	for _, entry := range DefaultRoster {
		roster = append(roster, models.Staff{StaffID: entry.StaffID, Name: entry.Name, PasswordHash: string(defaultHash)})
	}
	roster = append(roster, models.Staff{StaffID: cfg.AdminStaffID, Name: "Administrator", PasswordHash: string(adminHash), IsAdmin: true})

	if err := s.repo.CreateBatch(ctx, roster); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed staff")
	}
	s.logger.Info("staff table preloaded", zap.Int("teachers", len(DefaultRoster)), zap.String("admin", cfg.AdminStaffID))
	return len(roster), nil
}
