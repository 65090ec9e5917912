package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"minludo/internal/engine"
	"minludo/internal/types"
)

// getOrCreateSession retrieves the session ID from the cookie or creates a new one.
func (app *App) getOrCreateSession(c *gin.Context) string {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil || len(sessionID) < 10 {
		sessionID = uuid.NewString()
		c.SetSameSite(http.SameSiteStrictMode)
		secure := app.IsProduction
		c.SetCookie(SessionCookieName, sessionID, int(app.CookieMaxAge.Seconds()), "/", "", secure, true)
		requestLog(c.Request.Context()).WithField("session", sessionID).Info("Created new session")
	}
	return sessionID
}

// sessionFor returns the caller's game session, creating both cookie and game when needed.
func (app *App) sessionFor(c *gin.Context) *Session {
	return app.getSession(c.Request.Context(), app.getOrCreateSession(c))
}

// getSession looks up a session by ID, starting a fresh game if none exists.
func (app *App) getSession(ctx context.Context, sessionID string) *Session {
	app.SessionMutex.RLock()
	sess, exists := app.GameSessions[sessionID]
	app.SessionMutex.RUnlock()
	if exists {
		return sess
	}

	app.SessionMutex.Lock()
	defer app.SessionMutex.Unlock()
	if sess, exists = app.GameSessions[sessionID]; exists {
		return sess
	}
	sess = &Session{
		ID:             sessionID,
		engine:         app.newEngine(),
		lastAccessTime: time.Now(),
		subscribers:    make(map[chan types.GameSnapshot]struct{}),
	}
	app.GameSessions[sessionID] = sess
	requestLog(ctx).WithFields(map[string]any{
		"session":    sessionID,
		"difficulty": sess.engine.Difficulty(),
	}).Info("Started game for new session")
	return sess
}

// newEngine builds an engine with the configured default difficulty. A
// non-zero MinesSeed gives each new session its own reproducible sequence.
func (app *App) newEngine() *engine.Engine {
	opts := []engine.Option{engine.WithDifficulty(app.DefaultDifficulty)}
	if app.MinesSeed != 0 {
		opts = append(opts, engine.WithSeed(app.MinesSeed+app.seeded.Add(1)-1))
	}
	return engine.New(opts...)
}

// apply runs fn against the session's engine and publishes the resulting snapshot.
func (s *Session) apply(fn func(e *engine.Engine) error) (types.GameSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessTime = time.Now()
	err := fn(s.engine)
	snap := snapshotOf(s.engine)
	if err == nil {
		s.publishLocked(snap)
	}
	return snap, err
}

// snapshot returns the current view of the game and refreshes the access time.
func (s *Session) snapshot() types.GameSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessTime = time.Now()
	return snapshotOf(s.engine)
}

// tick advances the session clock and reports whether anything changed.
func (s *Session) tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.engine.Elapsed()
	s.engine.Tick()
	if s.engine.Elapsed() == before {
		return false
	}
	if len(s.subscribers) > 0 {
		s.publishLocked(snapshotOf(s.engine))
	}
	return true
}

// subscribe registers a snapshot channel. Slow readers only ever see the latest snapshot.
func (s *Session) subscribe() (<-chan types.GameSnapshot, func()) {
	ch := make(chan types.GameSnapshot, 1)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()
	return ch, func() {
		s.mu.Lock()
		delete(s.subscribers, ch)
		s.mu.Unlock()
	}
}

func (s *Session) publishLocked(snap types.GameSnapshot) {
	for ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

// expired reports whether the session has been idle longer than timeout.
// A session with a connected stream never expires.
func (s *Session) expired(now time.Time, timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.subscribers) > 0 {
		return false
	}
	return s.lastAccessTime.IsZero() || now.Sub(s.lastAccessTime) > timeout
}

// cleanupExpiredSessions drops sessions idle for longer than SessionTimeout.
// Returns the number removed.
func (app *App) cleanupExpiredSessions(now time.Time) int {
	app.SessionMutex.Lock()
	defer app.SessionMutex.Unlock()

	expired := lo.Filter(lo.Values(app.GameSessions), func(s *Session, _ int) bool {
		return s.expired(now, app.SessionTimeout)
	})
	for _, s := range expired {
		delete(app.GameSessions, s.ID)
	}
	if len(expired) > 0 {
		logInfo("Evicted %d idle session%s, %d remaining", len(expired), plural(len(expired)), len(app.GameSessions))
	}
	return len(expired)
}

// janitorInterval is a quarter of the session timeout, but never under a minute.
func (app *App) janitorInterval() time.Duration {
	return max(app.SessionTimeout/4, time.Minute)
}

// runJanitor evicts idle sessions until ctx is cancelled.
func (app *App) runJanitor(ctx context.Context) {
	ticker := time.NewTicker(app.janitorInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			app.cleanupExpiredSessions(now)
		}
	}
}

func (app *App) sessionCount() int {
	app.SessionMutex.RLock()
	defer app.SessionMutex.RUnlock()
	return len(app.GameSessions)
}
