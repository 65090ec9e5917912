package main

import (
	"context"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"minludo/internal/engine"
)

func main() {
	_ = godotenv.Load()

	isProduction := os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production"
	configureLogging(isProduction, getEnvString("LOG_LEVEL", "info"))
	logInfo("Starting Minludo in %s mode", map[bool]string{true: "production", false: "development"}[isProduction])

	app := loadConfig(isProduction)
	router := app.newRouter()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go app.runClock(ctx)
	go app.runJanitor(ctx)
	logInfo("Clock ticking every %v, idle sessions expire after %v", app.TickInterval, app.SessionTimeout)

	startServer(router, getEnvString("PORT", "8080"), cancel)
}

// loadConfig builds the App from the environment, falling back to defaults
// on anything it cannot parse.
func loadConfig(isProduction bool) *App {
	difficulty, err := engine.ParseDifficulty(getEnvString("DEFAULT_DIFFICULTY", string(engine.Beginner)))
	if err != nil {
		logWarn("Invalid DEFAULT_DIFFICULTY: %v, using %s", err, engine.Beginner)
		difficulty = engine.Beginner
	}
	return newApp(isProduction, func(app *App) {
		app.SessionTimeout = getEnvDuration("SESSION_TIMEOUT", app.SessionTimeout)
		app.CookieMaxAge = getEnvDuration("COOKIE_MAX_AGE", app.CookieMaxAge)
		app.StaticCacheAge = getEnvDuration("STATIC_CACHE_AGE", app.StaticCacheAge)
		app.RateLimitRPS = getEnvInt("RATE_LIMIT_RPS", app.RateLimitRPS)
		app.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", app.RateLimitBurst)
		app.TickInterval = getEnvDuration("TICK_INTERVAL", app.TickInterval)
		app.MinesSeed = getEnvUint64("MINES_SEED", 0)
		app.DefaultDifficulty = difficulty
	})
}

// newApp returns an App with default settings, then applies overrides in order.
func newApp(isProduction bool, overrides ...func(*App)) *App {
	app := &App{
		GameSessions:      make(map[string]*Session),
		LimiterMap:        make(map[string]*rate.Limiter),
		IsProduction:      isProduction,
		StartTime:         time.Now(),
		SessionTimeout:    2 * time.Hour,
		CookieMaxAge:      2 * time.Hour,
		StaticCacheAge:    5 * time.Minute,
		RateLimitRPS:      5,
		RateLimitBurst:    10,
		DefaultDifficulty: engine.Beginner,
		TickInterval:      time.Second,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	for _, o := range overrides {
		o(app)
	}
	return app
}

func (app *App) newRouter() *gin.Engine {
	if app.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestIDMiddleware(), accessLogMiddleware())
	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedExtensions([]string{".svg", ".ico", ".png", ".jpg", ".jpeg", ".gif"}),
		ginGzip.WithExcludedPaths([]string{"/static/fonts", RouteStream})))
	router.Use(app.cacheMiddleware())

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logWarn("Failed to set trusted proxies: %v", err)
	}

	if app.IsProduction && dirExists("dist") {
		logInfo("Serving assets from dist/ directory")
		loadTemplates(router, "dist/templates/*.html")
		router.Static("/static", "./dist/static")
	} else {
		logInfo("Serving development assets from source directories")
		loadTemplates(router, "templates/*.html")
		router.Static("/static", "./static")
	}

	app.registerRoutes(router)
	return router
}

// registerRoutes wires every page, API and stream route. Mutating routes are rate limited.
func (app *App) registerRoutes(router *gin.Engine) {
	limited := app.rateLimitMiddleware()

	router.GET(RouteHome, app.homeHandler)
	router.POST(RouteNewGame, limited, app.newGameHandler)
	router.POST(RouteReveal, limited, app.revealHandler)
	router.POST(RouteFlag, limited, app.flagHandler)
	router.GET(RouteGameState, app.gameStateHandler)
	router.POST(RoutePreferences, limited, app.preferencesHandler)

	router.GET(RouteAPIState, app.apiStateHandler)
	router.POST(RouteAPINewGame, limited, app.apiNewGameHandler)
	router.POST(RouteAPIReveal, limited, app.apiRevealHandler)
	router.POST(RouteAPIFlag, limited, app.apiFlagHandler)

	router.GET(RouteStream, app.streamHandler)
	router.GET(RouteHealth, app.healthzHandler)
}

// loadTemplates registers the template helpers before parsing, so every
// template can use them.
func loadTemplates(router *gin.Engine, pattern string) {
	router.SetFuncMap(template.FuncMap{
		"hasPrefix": strings.HasPrefix,
		"counter":   formatCounter,
		"cellClass": cellClass,
		"cellLabel": cellLabel,
	})
	router.LoadHTMLGlob(pattern)
}

func startServer(router *gin.Engine, port string, stopBackground context.CancelFunc) {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		logInfo("Shutdown signal received, shutting down server gracefully...")
		stopBackground()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logWarn("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	logInfo("Server starting on http://localhost:%s", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logFatal("Server failed to start: %v", err)
	}
	<-idleConnsClosed
	logInfo("Server shutdown complete")
}
