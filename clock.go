package main

import (
	"context"
	"time"

	"github.com/samber/lo"
)

// runClock advances the elapsed counter of every running game once per
// TickInterval until ctx is cancelled.
func (app *App) runClock(ctx context.Context) {
	interval := app.TickInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.tickAll()
		}
	}
}

// tickAll ticks each session once and returns how many clocks moved.
func (app *App) tickAll() int {
	app.SessionMutex.RLock()
	sessions := lo.Values(app.GameSessions)
	app.SessionMutex.RUnlock()

	return lo.CountBy(sessions, func(s *Session) bool {
		return s.tick()
	})
}
