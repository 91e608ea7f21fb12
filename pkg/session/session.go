// Package session wraps gin-contrib/sessions with the login state and flash
// messages used by the HTML pages.
package session

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/staff-attendance/pkg/config"
)

const (
	staffIDKey  = "staff_id"
	rememberKey = "remember"
	managerKey  = "sessionManager"
)

// Manager owns the cookie options and remember-me lifetime.
type Manager struct {
	cfg  config.SessionConfig
	opts sessions.Options
}

// NewManager constructs a session manager.
func NewManager(cfg config.SessionConfig) *Manager {
	return &Manager{
		cfg: cfg,
		opts: sessions.Options{
			Path:     "/",
			HttpOnly: true,
			Secure:   cfg.Secure,
			SameSite: http.SameSiteLaxMode,
		},
	}
}

// NewStore builds the backing store: signed cookies by default, redis when configured.
func (m *Manager) NewStore(redisCfg config.RedisConfig) (sessions.Store, error) {
	var (
		store sessions.Store
		err   error
	)
	switch m.cfg.Store {
	case "redis":
		store, err = redis.NewStore(redisCfg.PoolSize, "tcp", redisCfg.Addr(), redisCfg.Password, []byte(m.cfg.Secret))
		if err != nil {
			return nil, fmt.Errorf("connect redis session store: %w", err)
		}
	case "cookie", "":
		store = cookie.NewStore([]byte(m.cfg.Secret))
	default:
		return nil, fmt.Errorf("unknown session store %q", m.cfg.Store)
	}
	store.Options(m.opts)
	return store, nil
}

// Middleware attaches the session to every request.
func (m *Manager) Middleware(store sessions.Store) gin.HandlerFunc {
	attach := sessions.Sessions(m.cfg.Name, store)
	return func(c *gin.Context) {
		c.Set(managerKey, m)
		attach(c)
	}
}

// Login binds the session to staffID. A remembered session outlives the browser
// and keeps its lifetime on every later save.
func (m *Manager) Login(c *gin.Context, staffID string, remember bool) error {
	s := sessions.Default(c)
	s.Clear()
	s.Set(staffIDKey, staffID)
	if remember {
		s.Set(rememberKey, true)
	}
	return m.persist(s)
}

// Logout drops every value in the session. Flashes added afterwards survive.
func (m *Manager) Logout(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	return m.persist(s)
}

// persist writes the session with the cookie options it was created with.
func (m *Manager) persist(s sessions.Session) error {
	opts := m.opts
	if remember, _ := s.Get(rememberKey).(bool); remember {
		opts.MaxAge = int(m.cfg.RememberFor.Seconds())
	}
	s.Options(opts)
	return s.Save()
}

// save persists the request's session through the manager installed by Middleware.
func save(c *gin.Context) error {
	if m, ok := c.Get(managerKey); ok {
		if mgr, ok := m.(*Manager); ok {
			return mgr.persist(sessions.Default(c))
		}
	}
	return sessions.Default(c).Save()
}

// StaffID returns the signed-in staff identifier or an empty string.
func StaffID(c *gin.Context) string {
	v, _ := sessions.Default(c).Get(staffIDKey).(string)
	return v
}
