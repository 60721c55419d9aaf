package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/article-voting-api/internal/auth"
)

// stubVerifier accepts a single known token
type stubVerifier struct {
	token    string
	identity *auth.Identity
}

func (s *stubVerifier) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	if token == s.token {
		return s.identity, nil
	}
	return nil, errors.New("invalid token")
}

func setupAuthRouter(verifier auth.Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(auth.Middleware(verifier, zerolog.Nop()))
	router.GET("/whoami", func(c *gin.Context) {
		if identity, ok := auth.FromContext(c); ok {
			c.JSON(http.StatusOK, gin.H{"uid": identity.UID, "email": identity.Email})
			return
		}
		c.JSON(http.StatusOK, gin.H{"uid": nil})
	})
	return router
}

func whoami(router *gin.Engine, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/whoami", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMiddleware_ValidToken(t *testing.T) {
	verifier := &stubVerifier{token: "good", identity: &auth.Identity{UID: "u1", Email: "ana@example.com"}}
	router := setupAuthRouter(verifier)

	w := whoami(router, "authtoken", "good")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, `"uid":"u1"`) {
		t.Errorf("Expected verified identity, got %s", body)
	}
}

func TestMiddleware_BearerHeader(t *testing.T) {
	verifier := &stubVerifier{token: "good", identity: &auth.Identity{UID: "u1"}}
	router := setupAuthRouter(verifier)

	w := whoami(router, "Authorization", "Bearer good")
	if body := w.Body.String(); !strings.Contains(body, `"uid":"u1"`) {
		t.Errorf("Expected verified identity, got %s", body)
	}
}

func TestMiddleware_InvalidToken_Anonymous(t *testing.T) {
	verifier := &stubVerifier{token: "good", identity: &auth.Identity{UID: "u1"}}
	router := setupAuthRouter(verifier)

	// An invalid token never blocks the request
	w := whoami(router, "authtoken", "bad")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, `"uid":null`) {
		t.Errorf("Expected anonymous request, got %s", body)
	}
}

func TestMiddleware_NoVerifierConfigured(t *testing.T) {
	router := setupAuthRouter(nil)

	w := whoami(router, "authtoken", "anything")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, `"uid":null`) {
		t.Errorf("Expected anonymous request, got %s", body)
	}
}

func TestMiddleware_NoToken(t *testing.T) {
	verifier := &stubVerifier{token: "good", identity: &auth.Identity{UID: "u1"}}
	router := setupAuthRouter(verifier)

	w := whoami(router, "", "")
	if body := w.Body.String(); !strings.Contains(body, `"uid":null`) {
		t.Errorf("Expected anonymous request, got %s", body)
	}
}

