package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"

	"eduonline/internal/auth"
	"eduonline/internal/ws"
)

var upgrader = gws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers send the portal origin; trusting the bearer token that
	// already passed auth is the actual gate here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// websocket upgrades the connection, tracks presence for its lifetime,
// and watches the session so a login elsewhere force-logs this client out.
func (s *Server) websocket(c *gin.Context) {
	claims, _ := auth.ClaimsFrom(c)
	device := c.Query("device")
	if device == "" {
		device = c.Request.UserAgent()
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade for %s failed: %v", claims.Subject, err)
		return
	}

	connCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec, err := s.Presence.Begin(connCtx, claims.Subject, device, c.Query("prev_connection"))
	if err != nil {
		log.Printf("ws: presence begin for %s failed: %v", claims.Subject, err)
		conn.Close()
		return
	}
	go s.Presence.RunHeartbeat(connCtx, rec, s.Cfg.HeartbeatInterval)

	invalidations, stopWatch, err := s.Sessions.Watch(connCtx, claims.Subject, claims.SessionToken)
	if err != nil {
		log.Printf("ws: session watch for %s failed: %v", claims.Subject, err)
		conn.Close()
		return
	}
	defer stopWatch()

	client := ws.NewClient(s.Hub, conn, claims.Subject)
	s.Hub.Register(client)

	// Only this connection is displaced; other connections of the same
	// identity may belong to the newer login and stay untouched.
	go func() {
		for range invalidations {
			s.Hub.SendToClient(client, "session-invalidated", gin.H{
				"connectionId": rec.ConnectionID,
			})
			return
		}
	}()

	go client.WritePump()

	// Blocks until the client disconnects. Any frame from the client
	// counts as activity.
	client.ReadPump(func([]byte) {
		_ = s.Presence.Heartbeat(connCtx, rec)
	})
}
