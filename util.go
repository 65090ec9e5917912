package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// dirExists returns true if the given path exists and is a directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false
		}
		logWarn("Error checking directory existence: %v", err)
		return false
	}
	return info.IsDir()
}

// formatUptime returns a human-readable string for a duration.
func formatUptime(d time.Duration) string {
	seconds := int(d.Seconds()) % 60
	minutes := int(d.Minutes()) % 60
	hours := int(d.Hours())
	switch {
	case hours > 0:
		return fmt.Sprintf("%d hour%s, %d minute%s, %d second%s",
			hours, plural(hours),
			minutes, plural(minutes),
			seconds, plural(seconds))
	case minutes > 0:
		return fmt.Sprintf("%d minute%s, %d second%s",
			minutes, plural(minutes),
			seconds, plural(seconds))
	default:
		return fmt.Sprintf("%d second%s", seconds, plural(seconds))
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// formatCounter renders a counter the way the board header shows it: three
// digits, with a leading minus when the player has over-flagged.
func formatCounter(n int) string {
	if n < 0 {
		return fmt.Sprintf("-%02d", min(-n, 99))
	}
	return fmt.Sprintf("%03d", min(n, 999))
}

// getEnvDuration reads a time.Duration from the environment or returns a fallback.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		logWarn("Invalid duration for %s: %q, using default %v", key, val, fallback)
		return fallback
	}
	return d
}

// getEnvInt reads an int from the environment or returns a fallback.
func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	i, err := parseInt(val)
	if err != nil {
		logWarn("Invalid int for %s: %v, using default %d", key, err, fallback)
		return fallback
	}
	return i
}

func getEnvString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getEnvUint64(key string, fallback uint64) uint64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	u, err := strconv.ParseUint(strings.TrimSpace(val), 0, 64)
	if err != nil {
		logWarn("Invalid unsigned int for %s: %v, using default %d", key, err, fallback)
		return fallback
	}
	return u
}

// parseInt parses a decimal int, tolerating surrounding whitespace.
func parseInt(val string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(val))
}

// configureLogging switches logrus to JSON in production and applies the level name.
func configureLogging(production bool, level string) {
	if production {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		logWarn("Unknown log level %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// requestLog returns a logger tagged with the request ID carried by ctx, if any.
func requestLog(ctx context.Context) *log.Entry {
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		return log.WithField("request_id", id)
	}
	return log.NewEntry(log.StandardLogger())
}

func logInfo(format string, v ...any) {
	log.Infof(format, v...)
}

func logWarn(format string, v ...any) {
	log.Warnf(format, v...)
}

func logFatal(format string, v ...any) {
	log.Fatalf(format, v...)
}
