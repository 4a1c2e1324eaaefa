package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-recruitment-platform/internal/delivery/http/response"
	"go-recruitment-platform/internal/domain"
	"go-recruitment-platform/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		fromCtx, _ := c.Request.Context().Value(domain.KeyRequestID).(string)
		c.String(http.StatusOK, fromCtx)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := serve(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	w = serve(r, req)
	assert.NotEqual(t, "<script>", w.Header().Get(RequestIDHeader))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example.com", "https://*.example.org"}, false))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://app.example.com", true},
		{"https://jobs.example.org", true},
		{"https://example.org", false},
		{"https://evil.com", false},
		{"http://localhost:3000", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/", nil)
			req.Header.Set("Origin", tt.origin)
			w := serve(r, req)
			if tt.allowed {
				assert.Equal(t, http.StatusNoContent, w.Code)
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Equal(t, http.StatusForbidden, w.Code)
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/conflict", func(c *gin.Context) { c.Error(apperror.Conflict("Already applied")) })
	r.GET("/internal", func(c *gin.Context) { c.Error(errors.New("pq: relation does not exist")) })

	var body response.Response
	w := serve(r, httptest.NewRequest(http.MethodGet, "/conflict", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Already applied", body.Error)
	assert.NotEmpty(t, body.RequestID)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/internal", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
}

func TestRateLimiterInMemory(t *testing.T) {
	limiter := NewRateLimiter(nil, nil)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	r := gin.New()
	r.Use(limiter.Middleware(WriteConfig(2, time.Minute)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodPost, "/", nil)).Code)
	w := serve(r, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = serve(r, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	clock = clock.Add(61 * time.Second)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodPost, "/", nil)).Code)
}

type staticRoles map[string]domain.Role

func (s staticRoles) ResolveRole(_ context.Context, userID string, fallback domain.Role) domain.Role {
	if role, ok := s[userID]; ok {
		return role
	}
	return fallback
}

func TestAuthenticator(t *testing.T) {
	secret := "s3cret"
	auth := NewAuthenticator(secret, nil, staticRoles{"promoted": domain.RoleRecruiter}, nil)

	sign := func(claims jwt.MapClaims, method jwt.SigningMethod) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}

	r := gin.New()
	r.GET("/required", auth.Required(), func(c *gin.Context) { c.JSON(http.StatusOK, ViewerFrom(c)) })
	r.GET("/optional", auth.Optional(), func(c *gin.Context) { c.JSON(http.StatusOK, ViewerFrom(c)) })

	viewerOf := func(w *httptest.ResponseRecorder) domain.Viewer {
		var v domain.Viewer
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
		return v
	}

	t.Run("Stored role overrides token role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/required", nil)
		req.Header.Set("Authorization", "Bearer "+sign(jwt.MapClaims{"sub": "promoted", "role": "candidate"}, jwt.SigningMethodHS256))
		w := serve(r, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, domain.RoleRecruiter, viewerOf(w).Role)
	})

	t.Run("Unknown token roles become candidate", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/required", nil)
		req.Header.Set("Authorization", "Bearer "+sign(jwt.MapClaims{"sub": "u1", "role": "superuser"}, jwt.SigningMethodHS256))
		w := serve(r, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, domain.RoleCandidate, viewerOf(w).Role)
	})

	t.Run("Cookie token is accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/required", nil)
		req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: sign(jwt.MapClaims{"sub": "u2"}, jwt.SigningMethodHS256)})
		w := serve(r, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "u2", viewerOf(w).ID)
	})

	t.Run("Expired and subjectless tokens are rejected", func(t *testing.T) {
		for _, claims := range []jwt.MapClaims{
			{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()},
			{"role": "admin"},
		} {
			req := httptest.NewRequest(http.MethodGet, "/required", nil)
			req.Header.Set("Authorization", "Bearer "+sign(claims, jwt.SigningMethodHS256))
			assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
		}
	})

	t.Run("Optional falls back to anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/optional", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		w := serve(r, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, domain.Anonymous(), viewerOf(w))
	})
}

func TestUploadLimitIsPerViewer(t *testing.T) {
	limiter := NewRateLimiter(nil, nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(string(domain.KeyUserID), c.GetHeader("X-User"))
		c.Next()
	})
	r.Use(limiter.Middleware(UploadConfig(1, 24*time.Hour)))
	r.POST("/uploads/cv", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.DELETE("/uploads/cv/a.pdf", func(c *gin.Context) { c.Status(http.StatusOK) })

	upload := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/uploads/cv", nil)
		req.Header.Set("X-User", user)
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusCreated, upload("u1"))
	assert.Equal(t, http.StatusTooManyRequests, upload("u1"))
	assert.Equal(t, http.StatusCreated, upload("u2"))

	req := httptest.NewRequest(http.MethodDelete, "/uploads/cv/a.pdf", nil)
	req.Header.Set("X-User", "u1")
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}
