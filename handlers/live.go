// handlers/live.go - WebSocket feed for the study timer
//
// Served from the side net/http server. The client authenticates with its
// JWT (Authorization header or token cookie) and receives a tick event for
// every timer second plus a final event when the timer stops.
package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"studyclub/services"
	"studyclub/utils"

	"github.com/golang-jwt/jwt/v5"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	// WebSocket timeouts
	writeWait  = 10 * time.Second // Time allowed to write a message
	pingPeriod = 15 * time.Second // Send pings at this interval
)

// Message is the envelope for every event on the feed.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// TimerFeedHandler upgrades the connection and streams the user's timer.
func TimerFeedHandler(w http.ResponseWriter, r *http.Request) {
	userID, username, err := authenticateRequest(r)
	if err != nil {
		_ = utils.JSONError(w, http.StatusUnauthorized, err.Error())
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // TODO: Add proper origin checking in production
	})
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events, unsubscribe := services.GetTimerService().Subscribe(userID)
	defer unsubscribe()

	log.Printf("🔊 Timer feed connected: %s (ID: %d)", username, userID)

	// Initial snapshot so the client can render immediately.
	if state, err := services.GetTimerService().State(userID); err == nil {
		writeMessage(ctx, conn, Message{Type: "timer_state", Payload: state})
	}

	go pingPump(ctx, conn, userID)
	go func() {
		// Drain incoming frames; the feed is one-way, but reading is what
		// notices the peer going away.
		for {
			var msg Message
			if err := wsjson.Read(ctx, conn, &msg); err != nil {
				cancel()
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if !writeMessage(ctx, conn, Message{Type: "timer_tick", Payload: event}) {
				return
			}
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			log.Printf("🔌 Timer feed disconnected: %s (ID: %d)", username, userID)
			return
		}
	}
}

func writeMessage(ctx context.Context, conn *websocket.Conn, msg Message) bool {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	err := wsjson.Write(writeCtx, conn, msg)
	cancel()

	if err != nil {
		log.Printf("Write error on timer feed: %v", err)
		return false
	}
	return true
}

func pingPump(ctx context.Context, conn *websocket.Conn, userID uint) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := conn.Ping(pingCtx)
			cancel()

			if err != nil {
				log.Printf("Ping error on timer feed for user %d: %v", userID, err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// authenticateRequest validates the JWT from the Authorization header or
// the token cookie. The feed requires a signed-in user; there is no guest
// fallback because a guest has no timer to watch.
func authenticateRequest(r *http.Request) (uint, string, error) {
	var tokenString string

	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}

	if tokenString == "" {
		if cookie, err := r.Cookie("token"); err == nil {
			tokenString = cookie.Value
		}
	}

	if tokenString == "" {
		return 0, "", fmt.Errorf("missing token")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "studyclub-secret-change-in-production"
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", fmt.Errorf("invalid token claims")
	}

	userIDVal, ok := claims["user_id"].(float64)
	if !ok {
		return 0, "", fmt.Errorf("invalid token claims")
	}

	username, _ := claims["username"].(string)
	return uint(userIDVal), username, nil
}
