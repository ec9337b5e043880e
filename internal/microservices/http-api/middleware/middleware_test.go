package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"foodgram/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, tokenString string) (*service.Claims, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func validClaims() *service.Claims {
	return &service.Claims{
		UserID:           7,
		Email:            "cook@example.com",
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti-7"},
	}
}

// echoUser reports what the auth middleware put into the context.
func echoUser(c *gin.Context) {
	id, ok := CurrentUserID(c)
	c.JSON(http.StatusOK, gin.H{
		"user_id":  id,
		"authed":   ok,
		"token_id": c.GetString(ContextTokenID),
	})
}

func serve(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		setup    func(m *MockAuthService)
		wantCode int
		wantBody string
	}{
		{
			name:   "bearer token",
			header: "Bearer good",
			setup: func(m *MockAuthService) {
				m.On("ValidateToken", mock.Anything, "good").Return(validClaims(), nil)
			},
			wantCode: http.StatusOK,
			wantBody: `{"user_id":7,"authed":true,"token_id":"jti-7"}`,
		},
		{
			name:   "drf token prefix",
			header: "token good",
			setup: func(m *MockAuthService) {
				m.On("ValidateToken", mock.Anything, "good").Return(validClaims(), nil)
			},
			wantCode: http.StatusOK,
			wantBody: `{"user_id":7,"authed":true,"token_id":"jti-7"}`,
		},
		{
			name:     "missing header",
			setup:    func(m *MockAuthService) {},
			wantCode: http.StatusUnauthorized,
			wantBody: `{"error":"authentication credentials were not provided"}`,
		},
		{
			name:     "malformed header",
			header:   "Basic abc def",
			setup:    func(m *MockAuthService) {},
			wantCode: http.StatusUnauthorized,
			wantBody: `{"error":"invalid authorization header format"}`,
		},
		{
			name:   "revoked token",
			header: "Bearer revoked",
			setup: func(m *MockAuthService) {
				m.On("ValidateToken", mock.Anything, "revoked").Return(nil, service.ErrInvalidToken)
			},
			wantCode: http.StatusUnauthorized,
			wantBody: `{"error":"invalid token"}`,
		},
		{
			name:   "token store down",
			header: "Bearer good",
			setup: func(m *MockAuthService) {
				m.On("ValidateToken", mock.Anything, "good").Return(nil, errors.New("redis: connection refused"))
			},
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockAuthService)
			tt.setup(m)
			router := gin.New()
			router.GET("/", AuthMiddleware(m), echoUser)

			w := serve(router, tt.header)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			m.AssertExpectations(t)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	m := new(MockAuthService)
	m.On("ValidateToken", mock.Anything, "good").Return(validClaims(), nil)
	m.On("ValidateToken", mock.Anything, "bad").Return(nil, service.ErrInvalidToken)

	router := gin.New()
	router.GET("/", OptionalAuth(m), echoUser)

	w := serve(router, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0,"authed":false,"token_id":""}`, w.Body.String())

	w = serve(router, "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authed":true`)

	w = serve(router, "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimit(t *testing.T) {
	router := gin.New()
	router.GET("/", RateLimit(NewIPRateLimiter(0.001, 2)), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := serve(router, "")
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := serve(router, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestIPRateLimiter_SeparateBuckets(t *testing.T) {
	l := NewIPRateLimiter(0.001, 1)

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/ok", func(c *gin.Context) {
		c.Set(ContextUserID, int64(3))
		c.Status(http.StatusOK)
	})
	router.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("db down"))
		c.Status(http.StatusInternalServerError)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Contains(t, buf.String(), `"level":"INFO"`)
	assert.Contains(t, buf.String(), `"path":"/ok"`)
	assert.Contains(t, buf.String(), `"user_id":3`)

	buf.Reset()
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), `"status":500`)
	assert.Contains(t, buf.String(), "db down")
}
