package handlers

import (
	"net/http"
	"strings"
	"time"

	"food-distribution-backend/events"
	"food-distribution-backend/middleware"
	"food-distribution-backend/models"
	"food-distribution-backend/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// EventsHandler streams change events to the portal over a websocket.
type EventsHandler struct {
	Bus      *events.Bus
	Log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewEventsHandler(bus *events.Bus, allowedOrigins []string, log *zap.Logger) *EventsHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return &EventsHandler{
		Bus: bus,
		Log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
	}
}

// visible reports whether sess may see e. Notifications and session events
// go to their own principal; account changes only to super admins.
func visible(sess *session.Context, e events.Event) bool {
	switch e.Topic {
	case events.TopicNotification, events.TopicSession:
		return e.Key == sess.PrincipalID()
	case events.TopicPrincipal:
		return sess.Role() == models.RoleSuperAdmin
	}
	return true
}

func parseTopics(raw string) []events.Topic {
	var topics []events.Topic
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, events.Topic(t))
		}
	}
	return topics
}

// Stream upgrades the request and forwards bus events until either side
// goes away. The optional topics query narrows the feed.
func (h *EventsHandler) Stream(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Warn("failed to upgrade websocket", zap.Error(err))
		return
	}
	defer conn.Close()

	ch, cancel := h.Bus.Subscribe(parseTopics(c.Query("topics"))...)
	defer cancel()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			if !visible(sess, e) {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(e); err != nil {
				h.Log.Debug("websocket write failed", zap.String("principal", sess.PrincipalID()), zap.Error(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-clientClosed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
