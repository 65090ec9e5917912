package main

import "time"

// Cookie names
const (
	SessionCookieName = "session_id"
	ThemeCookieName   = "theme"
	AccentCookieName  = "accent"
)

// Route constants
const (
	RouteHome        = "/"
	RouteNewGame     = "/new-game"
	RouteReveal      = "/reveal"
	RouteFlag        = "/flag"
	RouteGameState   = "/game-state"
	RoutePreferences = "/preferences"
	RouteAPIState    = "/api/state"
	RouteAPINewGame  = "/api/new-game"
	RouteAPIReveal   = "/api/reveal"
	RouteAPIFlag     = "/api/flag"
	RouteStream      = "/ws"
	RouteHealth      = "/healthz"
)

// Websocket actions
const (
	ActionReveal  = "reveal"
	ActionFlag    = "flag"
	ActionNewGame = "new-game"
)

// Error message constants
const (
	ErrorInvalidCoordinates = "Row and column must be whole numbers."
	ErrorOffBoard           = "That cell is not on the board."
	ErrorUnknownDifficulty  = "Unknown difficulty."
	ErrorUnknownAction      = "Unknown action."
	ErrorInvalidBody        = "Malformed request body."
	ErrorInvalidPreference  = "Unknown theme or accent."
	ErrorRateLimited        = "Too many requests. Please slow down."
)

// Websocket timing
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

const pageTitle = "Minludo - Mine Sweeping in the Browser"

// Context key constants
const (
	requestIDKey contextKey = "request_id"
)
