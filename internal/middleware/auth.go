package middleware

import (
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-sphere/internal/auth"
	"github.com/yukikurage/task-sphere/internal/constants"
	apierrors "github.com/yukikurage/task-sphere/internal/errors"
)

// TokenVerifier validates a session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// PublicPaths never require a session. Matching is exact or on a "/" boundary.
var PublicPaths = []string{
	constants.LoginPath,
	constants.SignupPath,
	"/api/auth/login",
	"/api/auth/signup",
}

// ExemptPaths bypass the gate entirely. Matching is exact or on a "/" boundary.
var ExemptPaths = []string{
	constants.HealthPath,
	"/favicon.ico",
	"/assets",
	"/static",
	"/_next/static",
	"/_next/image",
}

// assetExtensions are served without a session so the login and signup pages
// can load their bundle.
var assetExtensions = map[string]bool{
	".css":   true,
	".js":    true,
	".map":   true,
	".png":   true,
	".jpg":   true,
	".jpeg":  true,
	".gif":   true,
	".svg":   true,
	".ico":   true,
	".webp":  true,
	".woff":  true,
	".woff2": true,
}

type gateAction int

const (
	actionPass gateAction = iota
	actionReject
	actionRedirectLogin
	actionRedirectHome
)

type gateRequest struct {
	exempt        bool
	api           bool
	authAPI       bool
	public        bool
	authenticated bool
}

type gateRule struct {
	name   string
	match  func(r gateRequest) bool
	action gateAction
}

// gateRules is evaluated top to bottom and the first match wins. API vs page
// is decided before public vs protected, and the public check before the
// session check.
var gateRules = []gateRule{
	{
		name:   "exempt",
		match:  func(r gateRequest) bool { return r.exempt && !r.api },
		action: actionPass,
	},
	{
		name:   "auth-api",
		match:  func(r gateRequest) bool { return r.api && r.authAPI },
		action: actionPass,
	},
	{
		name:   "api-unauthenticated",
		match:  func(r gateRequest) bool { return r.api && !r.authenticated },
		action: actionReject,
	},
	{
		name:   "api",
		match:  func(r gateRequest) bool { return r.api },
		action: actionPass,
	},
	{
		name:   "public-page-authenticated",
		match:  func(r gateRequest) bool { return r.public && r.authenticated },
		action: actionRedirectHome,
	},
	{
		name:   "public-page",
		match:  func(r gateRequest) bool { return r.public },
		action: actionPass,
	},
	{
		name:   "page-unauthenticated",
		match:  func(r gateRequest) bool { return !r.authenticated },
		action: actionRedirectLogin,
	},
}

var defaultRule = gateRule{name: "default", action: actionPass}

func evaluate(r gateRequest) gateRule {
	for _, rule := range gateRules {
		if rule.match(r) {
			return rule
		}
	}
	return defaultRule
}

// IsExemptPath reports whether path skips the gate: the health check and
// static assets.
func IsExemptPath(p string) bool {
	if matchesAny(p, ExemptPaths) {
		return true
	}
	return assetExtensions[strings.ToLower(path.Ext(p))]
}

// IsPublicPath reports whether path is on the public allowlist.
func IsPublicPath(path string) bool {
	return matchesAny(path, PublicPaths)
}

func matchesAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// SessionGate classifies every request and either lets it through, rejects it
// with 401 (API) or redirects it (pages). A valid session is recorded in the
// context whichever rule applies.
func SessionGate(tokens TokenVerifier, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		req := gateRequest{
			exempt:  IsExemptPath(path),
			api:     strings.HasPrefix(path, constants.APIPrefix),
			authAPI: strings.HasPrefix(path, constants.AuthAPIPrefix),
			public:  IsPublicPath(path),
		}

		if token, err := c.Cookie(constants.AuthCookieName); err == nil && token != "" {
			claims, err := tokens.Verify(token)
			if err != nil {
				log.DebugContext(c.Request.Context(), "session token rejected", "path", path, "error", err)
			} else {
				req.authenticated = true
				c.Set(constants.ContextKeyUserID, claims.UserID)
				c.Set(constants.ContextKeyIdentity, claims.Identity())
			}
		}

		switch evaluate(req).action {
		case actionReject:
			apierrors.Unauthorized(c, "Unauthorized")
		case actionRedirectLogin:
			c.Redirect(http.StatusTemporaryRedirect, constants.LoginPath)
			c.Abort()
		case actionRedirectHome:
			c.Redirect(http.StatusTemporaryRedirect, constants.HomePath)
			c.Abort()
		default:
			c.Next()
		}
	}
}

// RequireAuth guards routes the gate leaves public, such as /api/auth/me.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := GetUserID(c); !exists {
			apierrors.Unauthorized(c, "")
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}

	id, ok := userID.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// GetIdentity retrieves the session identity from context
func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	v, exists := c.Get(constants.ContextKeyIdentity)
	if !exists {
		return auth.Identity{}, false
	}

	identity, ok := v.(auth.Identity)
	return identity, ok
}
