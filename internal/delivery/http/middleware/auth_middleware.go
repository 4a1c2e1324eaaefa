package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go-recruitment-platform/internal/delivery/http/response"
	"go-recruitment-platform/internal/domain"
	"go-recruitment-platform/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthCookieName is the cookie consulted when no Authorization header is sent.
const AuthCookieName = "auth_token"

var errNoToken = errors.New("no token")

// RoleResolver returns the stored role of a user, falling back to the token
// role for users that have no record yet.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID string, fallback domain.Role) domain.Role
}

type Authenticator struct {
	secret []byte
	jwks   *auth.Provider
	roles  RoleResolver
	audit  domain.AuditLogger
}

// NewAuthenticator accepts HS256 tokens signed with secret and RS256 tokens
// whose keys are published at the jwks provider. Either may be disabled by
// passing an empty secret or a nil provider.
func NewAuthenticator(secret string, jwks *auth.Provider, roles RoleResolver, audit domain.AuditLogger) *Authenticator {
	return &Authenticator{secret: []byte(secret), jwks: jwks, roles: roles, audit: audit}
}

// Required rejects requests without a valid token.
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, err := a.authenticate(c)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, errNoToken) {
				message = "Authorization header or auth_token cookie required"
			} else if a.audit != nil {
				a.audit.Record(c.Request.Context(), domain.AuditEvent{
					Action:    domain.AuditUnauthorized,
					Subject:   c.FullPath(),
					RequestID: c.GetString(response.RequestIDKey),
					Details:   map[string]any{"ip": c.ClientIP(), "reason": err.Error()},
				})
			}
			response.Error(c, http.StatusUnauthorized, message, nil)
			c.Abort()
			return
		}
		setViewer(c, viewer)
		c.Next()
	}
}

// Optional identifies the viewer when a valid token is present and treats
// everyone else as anonymous.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, err := a.authenticate(c)
		if err != nil {
			viewer = domain.Anonymous()
		}
		setViewer(c, viewer)
		c.Next()
	}
}

func (a *Authenticator) authenticate(c *gin.Context) (domain.Viewer, error) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return domain.Viewer{}, errNoToken
	}

	token, err := jwt.Parse(tokenString, a.keyFunc)
	if err != nil || !token.Valid {
		return domain.Viewer{}, fmt.Errorf("token validation failed: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Viewer{}, errors.New("invalid claims")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return domain.Viewer{}, errors.New("token has no subject")
	}
	email, _ := claims["email"].(string)
	tokenRole, _ := claims["role"].(string)

	role := domain.ParseRole(tokenRole)
	if a.roles != nil {
		role = a.roles.ResolveRole(c.Request.Context(), sub, role)
	}
	return domain.Viewer{ID: sub, Email: email, Role: role}, nil
}

func (a *Authenticator) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if len(a.secret) == 0 {
			return nil, errors.New("HS256 token received but JWT_SECRET is not configured")
		}
		return a.secret, nil
	case *jwt.SigningMethodRSA:
		if a.jwks == nil {
			return nil, errors.New("RS256 token received but JWKS_URL is not configured")
		}
		return a.jwks.KeyFunc(token)
	default:
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(AuthCookieName); err == nil {
		return cookie
	}
	return ""
}

func setViewer(c *gin.Context, v domain.Viewer) {
	c.Set(string(domain.KeyUserID), v.ID)
	c.Set(string(domain.KeyUserEmail), v.Email)
	c.Set(string(domain.KeyUserRole), string(v.Role))
}

// ViewerFrom returns the viewer set by Required or Optional.
func ViewerFrom(c *gin.Context) domain.Viewer {
	id := c.GetString(string(domain.KeyUserID))
	if id == "" {
		return domain.Anonymous()
	}
	return domain.Viewer{
		ID:    id,
		Email: c.GetString(string(domain.KeyUserEmail)),
		Role:  domain.ParseRole(c.GetString(string(domain.KeyUserRole))),
	}
}
