package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/connect/internal/helpers"
	"github.com/joshua-takyi/connect/internal/models"
	"github.com/joshua-takyi/connect/internal/models/memstore"
	"github.com/joshua-takyi/connect/internal/services"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		id, _ := c.Get("request_id")
		c.String(http.StatusOK, id.(string))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" || w.Body.String() != "abc-123" {
		t.Errorf("echoed id = %q body %q, want abc-123", got, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := w.Header().Get("X-Request-ID"); got == "" || got != w.Body.String() {
		t.Errorf("generated id = %q body %q", got, w.Body.String())
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(discard))
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("db is down"))
	})
	r.GET("/written", func(c *gin.Context) {
		c.JSON(http.StatusTeapot, gin.H{"ok": true})
		_ = c.Error(errors.New("logged only"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["success"] != false || body["message"] != "Internal server error" || body["request_id"] == "" {
		t.Errorf("body = %v", body)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/written", nil))
	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, want the handler's 418", w.Code)
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(discard), Recovery(discard))
	r.GET("/panic", func(c *gin.Context) {
		panic("nil map write")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body models.ApiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body %q: %v", w.Body.String(), err)
	}
	if body.Success || body.Message == "" || body.Error == "" {
		t.Errorf("body = %+v", body)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer   abc", "abc", true},
		{"", "", false},
		{"abc", "", false},
		{"Basic abc", "", false},
		{"Bearer a b", "", false},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			c.Request.Header.Set("Authorization", tt.header)
		}
		got, err := bearerToken(c)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("bearerToken(%q) = %q, %v", tt.header, got, err)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	store := memstore.New()
	tokens := helpers.NewTokenManager("middleware-test-secret-long-enough", time.Hour)
	us := services.NewUserService(store, store, nil, tokens, nil, discard)

	r := gin.New()
	r.Use(ErrorHandler(discard))
	r.GET("/me", AuthMiddleware(us, discard), func(c *gin.Context) {
		claims := c.MustGet("user").(*helpers.Claims)
		c.String(http.StatusOK, claims.Subject)
	})

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for _, header := range []string{"", "Token x", "Bearer not-a-jwt"} {
		if w := call(header); w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, w.Code)
		}
	}

	input := models.SignupInput{Email: "mw@example.com", Password: "abc12345", FirstName: "M", LastName: "W"}
	res, err := us.Signup(t.Context(), &input, services.ClientInfo{})
	if err != nil {
		t.Fatal(err)
	}
	w := call("Bearer " + res.Token)
	if w.Code != http.StatusOK || w.Body.String() != res.User.ID.String() {
		t.Fatalf("valid token: status %d body %q", w.Code, w.Body.String())
	}

	claims, err := tokens.Parse(res.Token)
	if err != nil {
		t.Fatal(err)
	}
	if err := us.Logout(t.Context(), claims); err != nil {
		t.Fatal(err)
	}
	if w := call("Bearer " + res.Token); w.Code != http.StatusUnauthorized {
		t.Errorf("revoked token: status = %d, want 401", w.Code)
	}
}
