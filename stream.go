package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"minludo/internal/engine"
	"minludo/internal/types"
)

var errUnknownAction = errors.New(ErrorUnknownAction)

// streamHandler upgrades to a websocket that accepts moves and pushes a
// snapshot after every change to the session, including clock ticks.
func (app *App) streamHandler(c *gin.Context) {
	sess := app.sessionFor(c)
	client := c.ClientIP()
	logger := requestLog(c.Request.Context()).WithFields(log.Fields{"session": sess.ID, "client": client})

	// A session created by this request only reaches the browser through the handshake.
	var header http.Header
	if cookies := c.Writer.Header().Values("Set-Cookie"); len(cookies) > 0 {
		header = http.Header{"Set-Cookie": cookies}
	}
	conn, err := app.Upgrader.Upgrade(c.Writer, c.Request, header)
	if err != nil {
		logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	updates, unsubscribe := sess.subscribe()
	defer unsubscribe()

	logger.Info("Stream connected")
	if err := writeJSON(conn, sess.snapshot()); err != nil {
		logger.WithError(err).Debug("Initial snapshot write failed")
		return
	}

	failures := make(chan string, 4)
	done := make(chan struct{})
	go app.readActions(conn, sess, client, failures, done, logger)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-done:
			logger.Info("Stream closed")
			return
		case snap := <-updates:
			if err := writeJSON(conn, snap); err != nil {
				logger.WithError(err).Debug("Snapshot write failed")
				return
			}
		case msg := <-failures:
			if err := writeJSON(conn, gin.H{"error": msg}); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readActions applies client actions until the connection drops. Successful
// actions reach the client through the session subscription. Actions share
// the client's rate limit with the HTTP routes.
func (app *App) readActions(conn *websocket.Conn, sess *Session, client string, failures chan<- string, done chan<- struct{}, logger *log.Entry) {
	defer close(done)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var a types.Action
		if err := conn.ReadJSON(&a); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WithError(err).Warn("Stream read failed")
			}
			return
		}
		if !app.getLimiter(client).Allow() {
			logger.WithField("action", a.Action).Warn("Rate limit exceeded")
			sendFailure(failures, ErrorRateLimited)
			continue
		}
		if err := applyAction(sess, a); err != nil {
			logger.WithError(err).WithField("action", a.Action).Debug("Stream action rejected")
			sendFailure(failures, userMessage(err))
		}
	}
}

// sendFailure queues msg for the writer, dropping it if the queue is full.
func sendFailure(failures chan<- string, msg string) {
	select {
	case failures <- msg:
	default:
	}
}

func applyAction(sess *Session, a types.Action) error {
	var fn func(e *engine.Engine) error
	switch a.Action {
	case ActionReveal:
		fn = func(e *engine.Engine) error { return e.Reveal(a.Row, a.Col) }
	case ActionFlag:
		fn = func(e *engine.Engine) error { return e.ToggleFlag(a.Row, a.Col) }
	case ActionNewGame:
		fn = newGameAction(a.Difficulty)
	default:
		return fmt.Errorf("%w: %q", errUnknownAction, a.Action)
	}
	_, err := sess.apply(fn)
	return err
}

func writeJSON(conn *websocket.Conn, v any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}
