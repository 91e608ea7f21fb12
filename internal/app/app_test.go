package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/staff-attendance/internal/service"
	"github.com/noah-isme/staff-attendance/pkg/config"
	"github.com/noah-isme/staff-attendance/pkg/database"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:       config.EnvDevelopment,
		APIPrefix: "/api/v1",
		Timezone:  "Africa/Nairobi",
		Database:  config.DatabaseConfig{URL: "sqlite://:memory:"},
		Session: config.SessionConfig{
			Name:        "attendance_session",
			Secret:      "test-session-secret",
			Store:       "cookie",
			RememberFor: time.Hour,
		},
		CSRF:       config.CSRFConfig{Secret: "test-csrf-secret"},
		Mail:       config.MailConfig{Backend: "console", From: "office@school.example"},
		Attendance: config.AttendanceConfig{EarlyDepartureCutoff: "16:30"},
		Reminder:   config.ReminderConfig{Schedule: "0 17 * * *"},
		Learners:   config.LearnersConfig{Mode: config.LearnersModeIndividual},
		Seed: config.SeedConfig{
			Enabled:         true,
			DefaultPassword: "123456",
			AdminStaffID:    "Gofishnet001",
			AdminPassword:   "Gofishnet001*",
		},
		Metrics: config.MetricsConfig{Enabled: true},
	}
}

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newBrowser(t *testing.T, mutate func(*config.Config)) *browser {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}
	db, err := database.Open(cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	application, err := New(context.Background(), cfg, db, nil)
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:    t,
		base: srv.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(body)
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

// follow asserts a redirect to location and returns the page it points at.
func (b *browser) follow(resp *http.Response, location string) string {
	b.t.Helper()
	require.Equal(b.t, http.StatusFound, resp.StatusCode)
	require.Equal(b.t, location, resp.Header.Get("Location"))
	_, body := b.get(location)
	return body
}

func (b *browser) login(staffID, password string) *http.Response {
	b.t.Helper()
	resp, _ := b.post("/", url.Values{"staff_id": {staffID}, "password": {password}})
	return resp
}

// signIn logs in, completing first-time registration when asked to.
func (b *browser) signIn(staffID, password string) {
	b.t.Helper()
	resp := b.login(staffID, password)
	if resp.Header.Get("Location") == "/register/"+staffID {
		resp, _ = b.post("/register/"+staffID, url.Values{
			"email":    {strings.ToLower(staffID) + "@school.example"},
			"subjects": {"Mathematics"},
		})
		require.Equal(b.t, http.StatusFound, resp.StatusCode)
		resp = b.login(staffID, password)
	}
	b.follow(resp, "/dashboard")
}

func TestLoginRegisterAndAttendanceDay(t *testing.T) {
	b := newBrowser(t, nil)

	resp, body := b.post("/", url.Values{"staff_id": {"GFHKTS001"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Invalid credentials")

	resp = b.login("GFHKTS001", "123456")
	body = b.follow(resp, "/register/GFHKTS001")
	assert.Contains(t, body, "Wilfred Lai")

	resp, _ = b.post("/register/GFHKTS001", url.Values{
		"email":            {"wilfred@school.example"},
		"is_class_teacher": {"true"},
		"grade_assigned":   {"Grade 4"},
		"subjects":         {"Mathematics, Science"},
	})
	body = b.follow(resp, "/")
	assert.Contains(t, body, "Registration completed!")

	resp = b.login("GFHKTS001", "123456")
	body = b.follow(resp, "/dashboard")
	assert.Contains(t, body, "Login successful!")

	resp, _ = b.post("/attendance/signin", nil)
	body = b.follow(resp, "/dashboard")
	assert.Contains(t, body, "Attendance signed in at")

	resp, _ = b.post("/attendance/signin", nil)
	body = b.follow(resp, "/dashboard")
	assert.Contains(t, body, "You already signed in")

	resp, body = b.get("/api/v1/attendance/status")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status struct {
		Data struct {
			StaffID  string `json:"staff_id"`
			SignedIn bool   `json:"signed_in"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &status))
	assert.Equal(t, "GFHKTS001", status.Data.StaffID)
	assert.True(t, status.Data.SignedIn)

	resp, body = b.get("/logout/GFHKTS001")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Sick")

	resp, _ = b.post("/logout/GFHKTS001", url.Values{"reason": {"Sick"}})
	body = b.follow(resp, "/dashboard")
	assert.Contains(t, body, "Signed out at")

	resp, _ = b.post("/attendance/signout_simple", nil)
	body = b.follow(resp, "/dashboard")
	assert.Contains(t, body, "No active sign-in record found.")

	resp, _ = b.get("/logout_session")
	body = b.follow(resp, "/")
	assert.Contains(t, body, "Logged out of system successfully!")

	resp, _ = b.get("/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestTeacherCannotReachAdminOrOtherStaff(t *testing.T) {
	b := newBrowser(t, nil)
	b.signIn("GFHKTS002", "123456")

	resp, _ := b.get("/admin")
	body := b.follow(resp, "/dashboard")
	assert.Contains(t, body, "Access denied.")

	resp, _ = b.post("/logout/GFHKTS003", url.Values{"reason": {"Other"}})
	body = b.follow(resp, "/dashboard")
	assert.Contains(t, body, "Access denied.")

	resp, _ = b.get("/register/GFHKTS003")
	b.follow(resp, "/dashboard")

	resp, _ = b.get("/api/v1/attendance/early-departures")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminExportsAttendance(t *testing.T) {
	b := newBrowser(t, nil)
	b.signIn("Gofishnet001", "Gofishnet001*")

	resp, _ := b.post("/attendance/signin", nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp, body := b.get("/admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Gofishnet001")

	resp, body = b.get("/admin/export?format=xlsx")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")

	book, err := excelize.OpenReader(bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	rows, err := book.GetRows("attendance")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, service.AttendanceColumns, rows[0])
	assert.Equal(t, "Gofishnet001", rows[1][1])

	resp, body = b.get("/admin/export?format=csv")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(body, "id,staff_id,login_time"))

	resp, _ = b.get("/admin/export?format=docx")
	body = b.follow(resp, "/admin")
	assert.Contains(t, body, "Failed to generate report.")

	resp, body = b.get("/api/v1/attendance/early-departures")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"data"`)
}

func TestAdminManagesLearners(t *testing.T) {
	b := newBrowser(t, nil)
	b.signIn("Gofishnet001", "Gofishnet001*")

	learner := url.Values{
		"admission_no":  {"ADM-001"},
		"full_name":     {"Akinyi Atieno"},
		"gender":        {"f"},
		"date_of_birth": {"2016-03-14"},
		"grade":         {"Grade 3"},
		"guardian_name": {"Mary Atieno"},
	}
	resp, _ := b.post("/learners", learner)
	body := b.follow(resp, "/learners?grade=Grade+3")
	assert.Contains(t, body, "Learner Akinyi Atieno added.")
	assert.Contains(t, body, "ADM-001")

	resp, _ = b.post("/learners", learner)
	body = b.follow(resp, "/learners")
	assert.Contains(t, body, "Admission number already exists.")

	resp, body = b.get("/api/v1/learners/headcount")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var headcount struct {
		Data struct {
			Total int `json:"total_population"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &headcount))
	assert.Equal(t, 1, headcount.Data.Total)

	resp, body = b.get("/learners/edit/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Mary Atieno")

	learner.Set("grade", "Grade 4")
	resp, _ = b.post("/learners/edit/1", learner)
	body = b.follow(resp, "/learners?grade=Grade+4")
	assert.Contains(t, body, "Learner Akinyi Atieno updated.")

	resp, _ = b.get("/learners/export?grade=Grade+4")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "learners_grade_4.xlsx")

	resp, _ = b.post("/learners/delete/1", nil)
	body = b.follow(resp, "/learners")
	assert.Contains(t, body, "Learner deleted.")

	resp, _ = b.post("/learners/delete/1", nil)
	body = b.follow(resp, "/learners")
	assert.Contains(t, body, "Learner not found.")
}

func TestAggregateLearnersMode(t *testing.T) {
	b := newBrowser(t, func(cfg *config.Config) {
		cfg.Learners.Mode = config.LearnersModeAggregate
	})
	b.signIn("Gofishnet001", "Gofishnet001*")

	resp, _ := b.post("/admin", url.Values{
		"ecde_girls":    {"10"},
		"ecde_boys":     {"12"},
		"primary_girls": {"40"},
		"primary_boys":  {"38"},
	})
	body := b.follow(resp, "/admin")
	assert.Contains(t, body, "Learners data saved successfully!")

	resp, body = b.get("/api/v1/learners/headcount")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"total_population":100`)

	resp, _ = b.get("/learners")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAnonymousAccess(t *testing.T) {
	b := newBrowser(t, nil)

	resp, body := b.get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Staff login")

	resp, _ = b.get("/dashboard")
	body = b.follow(resp, "/")
	assert.Contains(t, body, "Please login first.")

	resp, _ = b.get("/api/v1/attendance/status")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = b.get("/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = b.get("/ready")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = b.get("/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "http_requests_total")
}

var csrfField = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

func TestFormsRequireCSRFToken(t *testing.T) {
	b := newBrowser(t, func(cfg *config.Config) {
		cfg.CSRF.Enabled = true
	})

	resp, _ := b.post("/", url.Values{"staff_id": {"GFHKTS004"}, "password": {"123456"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, body := b.get("/")
	match := csrfField.FindStringSubmatch(body)
	require.Len(t, match, 2)

	resp, _ = b.post("/", url.Values{
		"staff_id":   {"GFHKTS004"},
		"password":   {"123456"},
		"csrf_token": {match[1]},
	})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/register/GFHKTS004", resp.Header.Get("Location"))
}
