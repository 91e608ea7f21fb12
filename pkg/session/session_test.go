package session

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/staff-attendance/pkg/config"
)

func newRouter(t *testing.T, m *Manager, store sessions.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(m.Middleware(store))
	r.POST("/login", func(c *gin.Context) {
		require.NoError(t, m.Login(c, c.Query("staff_id"), c.Query("remember") == "1"))
		AddFlash(c, FlashSuccess, "Login successful!")
		c.Status(http.StatusNoContent)
	})
	r.GET("/whoami", func(c *gin.Context) {
		var msgs []string
		for _, f := range Flashes(c) {
			msgs = append(msgs, f.Category+":"+f.Message)
		}
		c.String(http.StatusOK, StaffID(c)+"|"+strings.Join(msgs, ","))
	})
	r.GET("/logout", func(c *gin.Context) {
		require.NoError(t, m.Logout(c))
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, method, target string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// latest keeps the last Set-Cookie per name, the way a browser would.
func latest(rec *httptest.ResponseRecorder) []*http.Cookie {
	byName := map[string]*http.Cookie{}
	var order []string
	for _, ck := range rec.Result().Cookies() {
		if _, ok := byName[ck.Name]; !ok {
			order = append(order, ck.Name)
		}
		byName[ck.Name] = ck
	}
	out := make([]*http.Cookie, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out
}

func testSessionConfig(store string) config.SessionConfig {
	return config.SessionConfig{
		Name:        "attendance_session",
		Secret:      "test-secret",
		Store:       store,
		RememberFor: 744 * time.Hour,
	}
}

func TestCookieSessionLoginFlashAndLogout(t *testing.T) {
	m := NewManager(testSessionConfig("cookie"))
	store, err := m.NewStore(config.RedisConfig{})
	require.NoError(t, err)
	r := newRouter(t, m, store)

	login := do(r, http.MethodPost, "/login?staff_id=GFHKTS001", nil)
	cookies := latest(login)
	require.NotEmpty(t, cookies)
	assert.Zero(t, cookies[0].MaxAge)

	first := do(r, http.MethodGet, "/whoami", cookies)
	assert.Equal(t, "GFHKTS001|success:Login successful!", first.Body.String())

	cookies = latest(first)
	second := do(r, http.MethodGet, "/whoami", cookies)
	assert.Equal(t, "GFHKTS001|", second.Body.String())

	out := do(r, http.MethodGet, "/logout", cookies)
	after := do(r, http.MethodGet, "/whoami", latest(out))
	assert.Equal(t, "|", after.Body.String())
}

func TestRememberMeSurvivesLaterSaves(t *testing.T) {
	m := NewManager(testSessionConfig("cookie"))
	store, err := m.NewStore(config.RedisConfig{})
	require.NoError(t, err)
	r := newRouter(t, m, store)
	remembered := int((744 * time.Hour).Seconds())

	login := do(r, http.MethodPost, "/login?staff_id=GFHKTS002&remember=1", nil)
	cookies := latest(login)
	require.NotEmpty(t, cookies)
	assert.Equal(t, remembered, cookies[0].MaxAge)

	// popping the login flash saves the session again
	first := do(r, http.MethodGet, "/whoami", cookies)
	assert.Equal(t, "GFHKTS002|success:Login successful!", first.Body.String())
	cookies = latest(first)
	require.NotEmpty(t, cookies)
	assert.Equal(t, remembered, cookies[0].MaxAge)
	assert.False(t, cookies[0].Expires.IsZero())

	out := do(r, http.MethodGet, "/logout", cookies)
	cookies = latest(out)
	require.NotEmpty(t, cookies)
	assert.Zero(t, cookies[0].MaxAge)
}

func TestSessionCookieStaysBrowserScopedWithoutRememberMe(t *testing.T) {
	m := NewManager(testSessionConfig("cookie"))
	store, err := m.NewStore(config.RedisConfig{})
	require.NoError(t, err)
	r := newRouter(t, m, store)

	login := do(r, http.MethodPost, "/login?staff_id=GFHKTS003", nil)
	first := do(r, http.MethodGet, "/whoami", latest(login))
	cookies := latest(first)
	require.NotEmpty(t, cookies)
	assert.Zero(t, cookies[0].MaxAge)
	assert.True(t, cookies[0].Expires.IsZero())
}

func TestRedisSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	m := NewManager(testSessionConfig("redis"))
	store, err := m.NewStore(config.RedisConfig{Host: mr.Host(), Port: port, PoolSize: 2})
	require.NoError(t, err)
	r := newRouter(t, m, store)

	login := do(r, http.MethodPost, "/login?staff_id=Gofishnet001", nil)
	assert.NotEmpty(t, mr.Keys())

	rec := do(r, http.MethodGet, "/whoami", latest(login))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Gofishnet001|"))
}

func TestUnknownStoreRejected(t *testing.T) {
	_, err := NewManager(testSessionConfig("memcached")).NewStore(config.RedisConfig{})
	assert.Error(t, err)
}
