package main

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"minludo/internal/engine"
	"minludo/internal/types"
)

type contextKey string

// App holds server configuration and all in-memory game sessions.
type App struct {
	GameSessions map[string]*Session
	SessionMutex sync.RWMutex

	LimiterMap   map[string]*rate.Limiter
	LimiterMutex sync.Mutex

	IsProduction      bool
	StartTime         time.Time
	SessionTimeout    time.Duration
	CookieMaxAge      time.Duration
	StaticCacheAge    time.Duration
	RateLimitRPS      int
	RateLimitBurst    int
	DefaultDifficulty engine.Difficulty
	TickInterval      time.Duration
	MinesSeed         uint64

	Upgrader websocket.Upgrader

	seeded atomic.Uint64
}

// Session is one player's game. The engine is not safe for concurrent use,
// so every access goes through mu.
type Session struct {
	ID string

	mu             sync.Mutex
	engine         *engine.Engine
	lastAccessTime time.Time
	subscribers    map[chan types.GameSnapshot]struct{}
}
