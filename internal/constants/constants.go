package constants

import "time"

// Session
const (
	AuthCookieName     = "auth-token"
	SessionTTL         = 7 * 24 * time.Hour
	ContextKeyUserID   = "user_id"
	ContextKeyIdentity = "identity"
)

// Credentials
const (
	MinNameLength     = 2
	MinPasswordLength = 8
	BcryptCost        = 10
)

// Routing
const (
	APIPrefix     = "/api/"
	AuthAPIPrefix = "/api/auth/"
	LoginPath     = "/login"
	SignupPath    = "/signup"
	HomePath      = "/"
	HealthPath    = "/health"
)

// Suggestions
const (
	MaxSuggestedTasks = 20
)
