package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/yigit/gradebook/internal/app/auth"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{
			name:    "not found keeps message",
			err:     fmt.Errorf("load: %w", apperrors.NewResourceNotFoundError("grade %d not found", 4)),
			status:  http.StatusNotFound,
			code:    dto.ErrorCodeResourceNotFound,
			message: "grade 4 not found",
		},
		{
			name:    "validation",
			err:     apperrors.NewValidationError("grade must be between 2 and 6"),
			status:  http.StatusBadRequest,
			code:    dto.ErrorCodeValidationFailed,
			message: "grade must be between 2 and 6",
		},
		{
			name:    "conflict",
			err:     apperrors.NewConflictError("attendance is already recorded"),
			status:  http.StatusConflict,
			code:    dto.ErrorCodeConflict,
			message: "attendance is already recorded",
		},
		{
			name:    "forbidden",
			err:     apperrors.NewForbiddenError("class outside your scope"),
			status:  http.StatusForbidden,
			code:    dto.ErrorCodeForbidden,
			message: "class outside your scope",
		},
		{
			name:    "bare sentinel falls back",
			err:     apperrors.ErrPermissionDenied,
			status:  http.StatusForbidden,
			code:    dto.ErrorCodeForbidden,
			message: "Permission denied",
		},
		{
			name:    "invalid credentials",
			err:     apperrors.ErrInvalidCredentials,
			status:  http.StatusUnauthorized,
			code:    dto.ErrorCodeInvalidCredentials,
			message: "Invalid credentials",
		},
		{
			name:    "expired token",
			err:     apperrors.ErrTokenExpired,
			status:  http.StatusUnauthorized,
			code:    dto.ErrorCodeExpiredToken,
			message: "Token expired",
		},
		{
			name:    "unknown",
			err:     errors.New("storage unreachable"),
			status:  http.StatusInternalServerError,
			code:    dto.ErrorCodeInternalServer,
			message: "Internal server error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
			require.Len(t, c.Errors, 1)
		})
	}
}

func jsonBody(s string) io.Reader { return strings.NewReader(s) }

type bindTarget struct {
	Name  string `json:"name" binding:"required"`
	Count int    `json:"count" binding:"min=1"`
}

func TestBindJSON_ValidationErrors(t *testing.T) {
	router := gin.New()
	router.POST("/", func(c *gin.Context) {
		var req bindTarget
		if !BindJSON(c, &req) {
			return
		}
		c.Status(http.StatusNoContent)
	})

	t.Run("field errors", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", jsonBody(`{"count":0}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, dto.ErrorCodeValidationFailed, resp.Error.Code)
		assert.Len(t, resp.Error.Details, 2)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", jsonBody(`{`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrorCodeInvalidRequest, decodeError(t, w).Error.Code)
	})

	t.Run("valid", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", jsonBody(`{"name":"8A","count":2}`))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func newAuthMiddleware() (*AuthMiddleware, *auth.JWTService) {
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "gradebook"})
	// Admin scopes resolve without touching the repositories
	resolver := appauth.NewScopeResolver(nil, nil, nil, nil, zerolog.Nop())
	return NewAuthMiddleware(jwtService, resolver, zerolog.Nop()), jwtService
}

func TestJWTAuth(t *testing.T) {
	m, jwtService := newAuthMiddleware()
	token, _, err := jwtService.GenerateAccessToken(&models.User{ID: 1, Email: "admin@school.test", RoleType: models.RoleAdmin})
	require.NoError(t, err)

	router := gin.New()
	router.GET("/me", m.JWTAuth(), func(c *gin.Context) {
		scope, ok := GetScope(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"userId": scope.UserID, "admin": scope.IsAdmin()})
	})
	router.GET("/admin", m.JWTAuth(), m.RoleRequired(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.GET("/teachers", m.JWTAuth(), m.RoleRequired(models.RoleTeacher), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		path   string
		header string
		status int
		code   dto.ErrorCode
	}{
		{name: "missing header", path: "/me", status: http.StatusUnauthorized, code: dto.ErrorCodeUnauthorized},
		{name: "garbage token", path: "/me", header: "Bearer nope", status: http.StatusUnauthorized, code: dto.ErrorCodeInvalidToken},
		{name: "valid bearer", path: "/me", header: "Bearer " + token, status: http.StatusOK},
		{name: "raw token", path: "/me", header: token, status: http.StatusOK},
		{name: "query token", path: "/me?token=" + token, status: http.StatusOK},
		{name: "role allowed", path: "/admin", header: "Bearer " + token, status: http.StatusNoContent},
		{name: "role denied", path: "/teachers", header: "Bearer " + token, status: http.StatusForbidden, code: dto.ErrorCodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, w).Error.Code)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(zerolog.Nop()))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, dto.ErrorCodeInternalServer, decodeError(t, w).Error.Code)
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"http://localhost:3000"}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	router.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.test")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
