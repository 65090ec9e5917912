package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"minludo/internal/engine"
	"minludo/internal/types"
)

var (
	themes  = []string{"light", "dark"}
	accents = []string{"blue", "green", "pink"}
)

// homeHandler renders the main game page for the current session.
func (app *App) homeHandler(c *gin.Context) {
	snap := app.sessionFor(c).snapshot()
	c.HTML(http.StatusOK, "index.html", app.pageData(c, snap, ""))
}

// newGameHandler starts a new game, optionally switching difficulty first.
func (app *App) newGameHandler(c *gin.Context) {
	sess := app.sessionFor(c)
	var req types.NewGameRequest
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		requestLog(c.Request.Context()).WithError(err).Warn("New game request malformed")
		app.renderGame(c, http.StatusBadRequest, sess.snapshot(), ErrorInvalidBody)
		return
	}

	snap, err := sess.apply(newGameAction(req.Difficulty))
	if err != nil {
		requestLog(c.Request.Context()).WithError(err).Warn("New game rejected")
		app.renderGame(c, http.StatusBadRequest, snap, userMessage(err))
		return
	}
	requestLog(c.Request.Context()).WithField("session", sess.ID).
		WithField("difficulty", snap.Difficulty).Info("New game started")
	if isHTMX(c) {
		c.Header("HX-Trigger", "new-game")
	}
	app.renderGame(c, http.StatusOK, snap, "")
}

// revealHandler opens the posted cell.
func (app *App) revealHandler(c *gin.Context) {
	app.cellAction(c, func(e *engine.Engine, r, col int) error { return e.Reveal(r, col) })
}

// flagHandler toggles the flag on the posted cell.
func (app *App) flagHandler(c *gin.Context) {
	app.cellAction(c, func(e *engine.Engine, r, col int) error { return e.ToggleFlag(r, col) })
}

func (app *App) cellAction(c *gin.Context, act func(e *engine.Engine, r, col int) error) {
	sess := app.sessionFor(c)
	var req types.CoordRequest
	if err := c.ShouldBind(&req); err != nil {
		app.renderGame(c, http.StatusBadRequest, sess.snapshot(), ErrorInvalidCoordinates)
		return
	}
	snap, err := sess.apply(func(e *engine.Engine) error { return act(e, *req.Row, *req.Col) })
	if err != nil {
		app.renderGame(c, http.StatusBadRequest, snap, userMessage(err))
		return
	}
	if snap.GameOver {
		requestLog(c.Request.Context()).WithField("session", sess.ID).
			WithField("status", snap.Status).Info("Game finished")
	}
	app.renderGame(c, http.StatusOK, snap, "")
}

// gameStateHandler renders the current game board as an HTML fragment.
func (app *App) gameStateHandler(c *gin.Context) {
	snap := app.sessionFor(c).snapshot()
	c.HTML(http.StatusOK, "game-content", app.pageData(c, snap, ""))
}

// preferencesHandler stores the cosmetic theme and accent choice in cookies.
func (app *App) preferencesHandler(c *gin.Context) {
	theme := strings.ToLower(strings.TrimSpace(c.PostForm("theme")))
	accent := strings.ToLower(strings.TrimSpace(c.PostForm("accent")))
	if (theme != "" && !lo.Contains(themes, theme)) || (accent != "" && !lo.Contains(accents, accent)) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrorInvalidPreference})
		return
	}

	maxAge := int((365 * 24 * time.Hour).Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	if theme != "" {
		c.SetCookie(ThemeCookieName, theme, maxAge, "/", "", app.IsProduction, true)
	}
	if accent != "" {
		c.SetCookie(AccentCookieName, accent, maxAge, "/", "", app.IsProduction, true)
	}

	if isHTMX(c) {
		c.Header("HX-Refresh", "true")
		c.Status(http.StatusNoContent)
		return
	}
	c.Redirect(http.StatusSeeOther, RouteHome)
}

// apiStateHandler returns the session's snapshot as JSON.
func (app *App) apiStateHandler(c *gin.Context) {
	c.JSON(http.StatusOK, app.sessionFor(c).snapshot())
}

func (app *App) apiNewGameHandler(c *gin.Context) {
	sess := app.sessionFor(c)
	var req types.NewGameRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrorInvalidBody})
		return
	}
	snap, err := sess.apply(newGameAction(req.Difficulty))
	app.respondJSON(c, snap, err)
}

func (app *App) apiRevealHandler(c *gin.Context) {
	app.apiCellAction(c, func(e *engine.Engine, r, col int) error { return e.Reveal(r, col) })
}

func (app *App) apiFlagHandler(c *gin.Context) {
	app.apiCellAction(c, func(e *engine.Engine, r, col int) error { return e.ToggleFlag(r, col) })
}

func (app *App) apiCellAction(c *gin.Context, act func(e *engine.Engine, r, col int) error) {
	sess := app.sessionFor(c)
	var req types.CoordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrorInvalidCoordinates})
		return
	}
	snap, err := sess.apply(func(e *engine.Engine) error { return act(e, *req.Row, *req.Col) })
	app.respondJSON(c, snap, err)
}

func (app *App) respondJSON(c *gin.Context, snap types.GameSnapshot, err error) {
	if err != nil {
		requestLog(c.Request.Context()).WithError(err).Debug("Engine rejected API call")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": userMessage(err)})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// healthzHandler returns a JSON health check with server stats.
func (app *App) healthzHandler(c *gin.Context) {
	uptime := time.Since(app.StartTime)
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"env":       map[bool]string{true: "production", false: "development"}[app.IsProduction],
		"sessions":  app.sessionCount(),
		"uptime":    formatUptime(uptime),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// renderGame answers an HTML game route: the board fragment for HTMX, a
// redirect home after a successful form post, or the full page with the error.
func (app *App) renderGame(c *gin.Context, status int, snap types.GameSnapshot, errMsg string) {
	if errMsg != "" {
		payload := map[string]string{"server_error": errMsg}
		if b, jerr := json.Marshal(payload); jerr == nil {
			c.Header("HX-Trigger", string(b))
		} else {
			logWarn("Failed to marshal HX-Trigger payload: %v", jerr)
		}
	}
	switch {
	case isHTMX(c):
		c.HTML(status, "game-content", app.pageData(c, snap, errMsg))
	case errMsg == "":
		c.Redirect(http.StatusSeeOther, RouteHome)
	default:
		c.HTML(status, "index.html", app.pageData(c, snap, errMsg))
	}
}

func (app *App) pageData(c *gin.Context, snap types.GameSnapshot, errMsg string) gin.H {
	theme, accent := preferences(c)
	return gin.H{
		"title":        pageTitle,
		"game":         snap,
		"error":        errMsg,
		"difficulties": engine.Difficulties(),
		"theme":        theme,
		"accent":       accent,
	}
}

// preferences reads the theme and accent cookies, ignoring unknown values.
func preferences(c *gin.Context) (theme, accent string) {
	theme, accent = themes[0], accents[0]
	if v, err := c.Cookie(ThemeCookieName); err == nil && lo.Contains(themes, v) {
		theme = v
	}
	if v, err := c.Cookie(AccentCookieName); err == nil && lo.Contains(accents, v) {
		accent = v
	}
	return theme, accent
}

// newGameAction configures the requested difficulty, if any, then deals a new board.
func newGameAction(difficulty string) func(e *engine.Engine) error {
	return func(e *engine.Engine) error {
		if strings.TrimSpace(difficulty) != "" {
			d, err := engine.ParseDifficulty(difficulty)
			if err != nil {
				return err
			}
			if err := e.Configure(d); err != nil {
				return err
			}
		}
		return e.NewGame()
	}
}

// userMessage maps engine errors to the text shown to players.
func userMessage(err error) string {
	switch {
	case errors.Is(err, engine.ErrOutOfBounds):
		return ErrorOffBoard
	case errors.Is(err, engine.ErrConfiguration):
		return ErrorUnknownDifficulty
	case errors.Is(err, errUnknownAction):
		return ErrorUnknownAction
	default:
		return err.Error()
	}
}
