package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campuscare/campuscare/internal/api/handler"
	"github.com/campuscare/campuscare/internal/core/domain"
	"github.com/campuscare/campuscare/internal/core/ports"
)

const (
	// presenceTTL bounds how long a crashed gateway leaves an identity
	// marked online. Connected clients refresh it with every message.
	presenceTTL = 30 * time.Second

	// writeTimeout bounds a single event write to a socket.
	writeTimeout = 5 * time.Second

	// sessionCookie mirrors the identity provider's cookie name accepted
	// by the API server.
	sessionCookie = "__session"
)

// Server terminates socket connections: it authenticates the upgrade
// request, registers the connection with the hub, and pumps events from
// the hub to the wire.
type Server struct {
	identities ports.IdentityService
	presence   ports.Presence
	hub        *Hub
	origin     string
	log        zerolog.Logger
}

func NewServer(identities ports.IdentityService, presence ports.Presence, hub *Hub, origin string, log zerolog.Logger) *Server {
	return &Server{
		identities: identities,
		presence:   presence,
		hub:        hub,
		origin:     origin,
		log:        log,
	}
}

// NewRouter builds the Echo instance for the gateway binary: the socket
// endpoint plus the usual probes and metrics.
func NewRouter(srv *Server, db *mongo.Database, rdb *redis.Client) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("campuscare_gateway"))

	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/ws", srv.HandleSocket)

	return e
}

// HandleSocket authenticates and upgrades a socket connection. Rejection
// happens before the upgrade so unauthenticated clients get a plain 401.
func (s *Server) HandleSocket(c echo.Context) error {
	token := socketCredential(c)
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication token not found")
	}

	identity, err := s.identities.Authenticate(c.Request().Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
		}
		return fmt.Errorf("socket authenticate: %w", err)
	}

	opts := &websocket.AcceptOptions{}
	if pattern := originPattern(s.origin); pattern != "" {
		opts.OriginPatterns = []string{pattern}
	}
	conn, err := websocket.Accept(c.Response(), c.Request(), opts)
	if err != nil {
		return nil
	}

	s.log.Info().
		Str("user_id", identity.ID).
		Str("role", string(identity.Role)).
		Msg("socket connected")

	s.serve(c.Request().Context(), conn, identity)
	return nil
}

// serve runs the connection's pumps until the client disconnects or an
// event write fails.
func (s *Server) serve(reqCtx context.Context, conn *websocket.Conn, identity *domain.Identity) {
	ctx, cancel := context.WithCancel(reqCtx)
	defer cancel()

	client := &Client{
		UserID:   identity.ID,
		Role:     identity.Role,
		CampusID: identity.CampusID,
		send:     make(chan *domain.Event, sendBuffer),
		closeSlow: func() {
			_ = conn.Close(websocket.StatusPolicyViolation, "connection too slow to keep up")
		},
	}

	s.hub.Register(client)
	if err := s.presence.SetOnline(ctx, identity.ID, presenceTTL); err != nil {
		s.log.Warn().Err(err).Str("user_id", identity.ID).Msg("presence set online failed")
	}
	defer func() {
		last := s.hub.Unregister(client)
		if last {
			offCtx, offCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer offCancel()
			if err := s.presence.SetOffline(offCtx, identity.ID); err != nil {
				s.log.Warn().Err(err).Str("user_id", identity.ID).Msg("presence set offline failed")
			}
		}
		s.log.Info().Str("user_id", identity.ID).Msg("socket disconnected")
	}()

	// Read pump: the client sends no commands, but every inbound frame
	// (pings included) refreshes its presence entry.
	readErr := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				readErr <- err
				return
			}
			if err := s.presence.Heartbeat(ctx, identity.ID, presenceTTL); err != nil {
				s.log.Warn().Err(err).Str("user_id", identity.ID).Msg("presence heartbeat failed")
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return
		case <-readErr:
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return
		case event := <-client.send:
			writeCtx, cancelWrite := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, conn, event)
			cancelWrite()
			if err != nil {
				_ = conn.Close(websocket.StatusNormalClosure, "write_failed")
				return
			}
		}
	}
}

// socketCredential pulls the token from the query string, the session
// cookie, or the Authorization header, in that order. Browsers cannot set
// headers on socket upgrades, so the query form is the common path.
func socketCredential(c echo.Context) string {
	if token := c.QueryParam("token"); token != "" {
		return token
	}
	if cookie, err := c.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// originPattern converts a configured CORS origin into a host pattern
// the socket library can match against.
func originPattern(origin string) string {
	if origin == "" || origin == "*" {
		return ""
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Host
}
