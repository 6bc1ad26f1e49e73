package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/driftwear-shop/driftwear/internal/config"
	"github.com/driftwear-shop/driftwear/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newMiddlewareRouter(middleware ...gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware...)
	engine.GET("/probe", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return engine
}

func TestCORSMiddlewareDefaultsExposeCartToken(t *testing.T) {
	engine := newMiddlewareRouter(CORSMiddleware(config.CORSConfig{}))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/probe", nil)
	request.Header.Set("Origin", "https://shop.example.com")
	engine.ServeHTTP(recorder, request)

	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
	if got := recorder.Header().Get("Access-Control-Expose-Headers"); got != "X-Cart-Token, X-Request-ID" {
		t.Fatalf("unexpected expose-headers %q", got)
	}
	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", recorder.Code)
	}
}

func TestCORSMiddlewareRejectsUnknownOrigin(t *testing.T) {
	engine := newMiddlewareRouter(CORSMiddleware(config.CORSConfig{
		AllowedOrigins: []string{"https://shop.example.com"},
	}))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/probe", nil)
	request.Header.Set("Origin", "https://evil.example.com")
	engine.ServeHTTP(recorder, request)

	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unknown origin must not be allowed, got %q", got)
	}
}

func TestCORSMiddlewareShortCircuitsPreflight(t *testing.T) {
	engine := newMiddlewareRouter(CORSMiddleware(config.CORSConfig{}))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodOptions, "/probe", nil)
	request.Header.Set("Origin", "https://shop.example.com")
	engine.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", recorder.Code)
	}
}

func TestRequestIDMiddlewareEchoesAndMints(t *testing.T) {
	engine := newMiddlewareRouter(RequestIDMiddleware())

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/probe", nil)
	request.Header.Set("X-Request-ID", "req-fixed")
	engine.ServeHTTP(recorder, request)
	if got := recorder.Header().Get("X-Request-ID"); got != "req-fixed" {
		t.Fatalf("expected request id echoed, got %q", got)
	}

	recorder = httptest.NewRecorder()
	request = httptest.NewRequest(http.MethodGet, "/probe", nil)
	engine.ServeHTTP(recorder, request)
	if got := recorder.Header().Get("X-Request-ID"); got == "" {
		t.Fatalf("expected request id minted")
	}
}

func mintMediaToken(t *testing.T, secret, role string, expiresAt time.Time) string {
	t.Helper()

	claims := &MediaJWTClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	return token
}

// decodeEnvelope 解析统一响应的业务状态码。鉴权失败也走 HTTP 200
// 加业务码的约定。
func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) response.Response {
	t.Helper()

	var envelope response.Response
	if err := json.Unmarshal(recorder.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response failed: %v body=%s", err, recorder.Body.String())
	}
	return envelope
}

func TestMediaJWTAuthMiddlewareAcceptsValidRole(t *testing.T) {
	const secret = "media-jwt-secret-for-tests"
	engine := newMiddlewareRouter(MediaJWTAuthMiddleware(secret, "fitting"))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/probe", nil)
	request.Header.Set("Authorization", "Bearer "+mintMediaToken(t, secret, "Fitting", time.Now().Add(time.Hour)))
	engine.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK || recorder.Body.String() != "ok" {
		t.Fatalf("expected handler reached for valid token, got %d body=%s", recorder.Code, recorder.Body.String())
	}
}

func TestMediaJWTAuthMiddlewareRejectsWrongRole(t *testing.T) {
	const secret = "media-jwt-secret-for-tests"
	engine := newMiddlewareRouter(MediaJWTAuthMiddleware(secret, "fitting"))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/probe", nil)
	request.Header.Set("Authorization", "Bearer "+mintMediaToken(t, secret, "viewer", time.Now().Add(time.Hour)))
	engine.ServeHTTP(recorder, request)

	if envelope := decodeEnvelope(t, recorder); envelope.StatusCode != response.CodeForbidden {
		t.Fatalf("expected forbidden code for wrong role, got %d", envelope.StatusCode)
	}
}

func TestMediaJWTAuthMiddlewareRejectsBadTokens(t *testing.T) {
	const secret = "media-jwt-secret-for-tests"
	engine := newMiddlewareRouter(MediaJWTAuthMiddleware(secret, "fitting"))

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Token abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + mintMediaToken(t, "other-secret", "fitting", time.Now().Add(time.Hour))},
		{"expired", "Bearer " + mintMediaToken(t, secret, "fitting", time.Now().Add(-time.Hour))},
	}
	for _, tc := range cases {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/probe", nil)
		if tc.header != "" {
			request.Header.Set("Authorization", tc.header)
		}
		engine.ServeHTTP(recorder, request)
		if envelope := decodeEnvelope(t, recorder); envelope.StatusCode != response.CodeUnauthorized {
			t.Fatalf("%s: expected unauthorized code, got %d", tc.name, envelope.StatusCode)
		}
	}
}
