package main

import (
	"net/http"

	"github.com/HammerMeetNail/readshelf/internal/handlers"
	"github.com/HammerMeetNail/readshelf/internal/middleware"
)

type routerDeps struct {
	health      *handlers.HealthHandler
	auth        *handlers.AuthHandler
	invitations *handlers.InvitationHandler
	friends     *handlers.FriendHandler
	authMW      *middleware.AuthMiddleware
	authLimiter *middleware.RateLimiter
	security    *middleware.SecurityHeaders
	logger      *middleware.RequestLogger
	compress    *middleware.Compress
}

func newRouter(d routerDeps) http.Handler {
	requireAuth := d.authMW.RequireAuth
	limited := func(h http.HandlerFunc) http.Handler {
		return d.authLimiter.Middleware(h)
	}

	mux := http.NewServeMux()

	// Health endpoints (no auth, no rate limit)
	mux.HandleFunc("GET /health", d.health.Health)
	mux.HandleFunc("GET /ready", d.health.Ready)
	mux.HandleFunc("GET /live", d.health.Live)

	// Auth endpoints
	mux.Handle("POST /api/auth/register", limited(d.auth.Register))
	mux.Handle("POST /api/auth/login", limited(d.auth.Login))
	mux.Handle("POST /api/auth/verify", limited(d.auth.Verify))
	mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(d.auth.Me)))

	// Invitation endpoints; the preview is public so the recipient can see it before signing in
	mux.Handle("POST /api/friends/invitations", requireAuth(http.HandlerFunc(d.invitations.Create)))
	mux.Handle("GET /api/friends/invitations", requireAuth(http.HandlerFunc(d.invitations.ListPending)))
	mux.HandleFunc("GET /api/friends/invitations/{token}", d.invitations.Preview)
	mux.Handle("POST /api/friends/invitations/{id}/accept", requireAuth(http.HandlerFunc(d.invitations.Accept)))

	// Friend endpoints
	mux.Handle("GET /api/friends", requireAuth(http.HandlerFunc(d.friends.List)))
	mux.Handle("GET /api/friends/{friendId}", requireAuth(http.HandlerFunc(d.friends.Profile)))

	// Build middleware chain (innermost first)
	var handler http.Handler = mux
	handler = d.logger.Apply(handler)
	handler = d.authMW.Authenticate(handler)
	handler = d.security.Apply(handler)
	handler = d.compress.Apply(handler)
	return handler
}
