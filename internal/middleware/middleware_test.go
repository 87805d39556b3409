package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GoPolymarket/kylingate/internal/config"
	"github.com/GoPolymarket/kylingate/internal/pkg/apperrors"
	"github.com/GoPolymarket/kylingate/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.Use(mw...)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestErrorHandlerRendersAppError(t *testing.T) {
	r := newRouter()
	r.GET("/bad", func(c *gin.Context) { c.Error(apperrors.NewUnknownCommand("nope")) })
	r.GET("/foreign", func(c *gin.Context) { c.Error(errors.New("boom")) })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/bad", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "UNKNOWN_COMMAND", body["code"])
	assert.Contains(t, body["message"], "nope")

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/foreign", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestIDGeneratedAndPropagated(t *testing.T) {
	var fromCtx string
	r := newRouter(RequestID())
	r.GET("/", func(c *gin.Context) {
		fromCtx = service.RequestIDFrom(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	id := rec.Header().Get(HeaderRequestID)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, fromCtx)
}

func TestRequestIDReusesValidInbound(t *testing.T) {
	r := newRouter(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	inbound := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, inbound)
	assert.Equal(t, inbound, serve(r, req).Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "not a uuid\r\n")
	assert.NotEqual(t, "not a uuid\r\n", serve(r, req).Header().Get(HeaderRequestID))
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newRouter(RateLimitMiddleware(NewLimiter(0.001, 1)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRateLimitDisabled(t *testing.T) {
	assert.Nil(t, NewLimiter(0, 10))

	r := newRouter(RateLimitMiddleware(nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware(config.AuthConfig{RequireAPIKey: true, APIKey: "gw-secret"}))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(HeaderGatewayKey, "wrong")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(HeaderGatewayKey, "gw-secret")
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}

func TestAuthMiddlewareDisabled(t *testing.T) {
	r := newRouter(AuthMiddleware(config.AuthConfig{}))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodPost, "/", nil)).Code)
}
