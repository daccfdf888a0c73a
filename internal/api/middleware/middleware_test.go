package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	apiError "github.com/recipevault/recipevault/internal/api/error"
	"github.com/recipevault/recipevault/internal/api/requestid"
	"github.com/recipevault/recipevault/internal/api/token"
	"github.com/recipevault/recipevault/internal/env"
	rvJwt "github.com/recipevault/recipevault/internal/jwt"
	"github.com/recipevault/recipevault/internal/log"
)

const testAppSecret = "test-secret-32-bytes-long-123456"

func testEnv(vars map[string]string) *env.Env {
	e := env.New(vars)
	e.Logger = log.NullLogger()
	return e
}

func expiredToken(t *testing.T, userID int64, secret string) string {
	t.Helper()
	claims := jwtlib.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	tok.Header["kid"] = "1"
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestAuthenticate(t *testing.T) {
	e := testEnv(map[string]string{
		"APP_SECRET":         testAppSecret,
		"APP_SECRET_VERSION": "1",
	})

	validToken := func(t *testing.T, userID int64) string {
		t.Helper()
		accessToken, err := token.NewAccessToken(rvJwt.JWTParams{
			UserID: strconv.FormatInt(userID, 10),
		}, e)
		if err != nil {
			t.Fatalf("failed to create access token: %v", err)
		}
		return accessToken
	}

	tests := []struct {
		name         string
		environment  *env.Env
		setupRequest func(*testing.T, *http.Request)
		wantStatus   int
		wantCode     apiError.ErrorCode
		wantUserID   int64
	}{
		{
			name:        "valid bearer token",
			environment: e,
			setupRequest: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+validToken(t, 123))
			},
			wantStatus: 200,
			wantUserID: 123,
		},
		{
			name:         "missing authorization header",
			environment:  e,
			setupRequest: func(t *testing.T, r *http.Request) {},
			wantStatus:   401,
			wantCode:     apiError.AuthenticationRequired,
		},
		{
			name:        "wrong scheme",
			environment: e,
			setupRequest: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
			},
			wantStatus: 401,
			wantCode:   apiError.AuthenticationRequired,
		},
		{
			name:        "garbage token",
			environment: e,
			setupRequest: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer not.a.jwt")
			},
			wantStatus: 401,
			wantCode:   apiError.InvalidAccessToken,
		},
		{
			name:        "expired token",
			environment: e,
			setupRequest: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+expiredToken(t, 123, testAppSecret))
			},
			wantStatus: 401,
			wantCode:   apiError.ExpiredAccessToken,
		},
		{
			name:        "token signed with a different secret",
			environment: e,
			setupRequest: func(t *testing.T, r *http.Request) {
				other := testEnv(map[string]string{
					"APP_SECRET":         "another-secret-32-bytes-long-xyz",
					"APP_SECRET_VERSION": "1",
				})
				accessToken, err := token.NewAccessToken(rvJwt.JWTParams{UserID: "123"}, other)
				if err != nil {
					t.Fatalf("failed to create access token: %v", err)
				}
				r.Header.Set("Authorization", "Bearer "+accessToken)
			},
			wantStatus: 401,
			wantCode:   apiError.InvalidAccessToken,
		},
		{
			name:        "missing app secret",
			environment: testEnv(map[string]string{"APP_SECRET": ""}),
			setupRequest: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+validToken(t, 123))
			},
			wantStatus: 500,
			wantCode:   apiError.InternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID int64
			var nextCalled bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				gotUserID, _ = token.UserIDFromCtx(r.Context())
			})

			r := httptest.NewRequest(http.MethodGet, "/recipes/recipe", nil)
			ctx := requestid.InjectRequestID(context.Background(), 12345)
			r = r.WithContext(env.WithCtx(ctx, tt.environment))
			tt.setupRequest(t, r)
			w := httptest.NewRecorder()

			Authenticate(next).ServeHTTP(w, r)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus == 200 {
				if !nextCalled {
					t.Fatalf("expected next handler to run")
				}
				if gotUserID != tt.wantUserID {
					t.Errorf("expected user id %d in context, got %d", tt.wantUserID, gotUserID)
				}
				return
			}
			if nextCalled {
				t.Errorf("next handler should not run on auth failure")
			}
			var apiErr apiError.Error
			if err := json.Unmarshal(w.Body.Bytes(), &apiErr); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, apiErr.Code)
			}
		})
	}
}

func TestAddCors(t *testing.T) {
	tests := []struct {
		name       string
		vars       map[string]string
		origin     string
		method     string
		wantOrigin string
		wantStatus int
	}{
		{
			name:       "prod uses configured origin",
			vars:       map[string]string{"ENV": "PROD", "HOST_ORIGIN": "https://recipes.example.com"},
			origin:     "https://evil.example.com",
			method:     http.MethodGet,
			wantOrigin: "https://recipes.example.com",
			wantStatus: 200,
		},
		{
			name:       "dev reflects request origin",
			vars:       map[string]string{"ENV": "DEV", "HOST_ORIGIN": "https://recipes.example.com"},
			origin:     "http://localhost:3000",
			method:     http.MethodGet,
			wantOrigin: "http://localhost:3000",
			wantStatus: 200,
		},
		{
			name:       "preflight short-circuits",
			vars:       map[string]string{"ENV": "PROD", "HOST_ORIGIN": "https://recipes.example.com"},
			origin:     "https://recipes.example.com",
			method:     http.MethodOptions,
			wantOrigin: "https://recipes.example.com",
			wantStatus: 204,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			r := httptest.NewRequest(tt.method, "/ping", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			r = r.WithContext(env.WithCtx(r.Context(), testEnv(tt.vars)))
			w := httptest.NewRecorder()

			AddCors(next).ServeHTTP(w, r)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("expected allowed origin %q, got %q", tt.wantOrigin, got)
			}
		})
	}
}

func TestAddRequestID(t *testing.T) {
	var gotID uint64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = requestid.ExtractRequestID(r.Context())
	})

	r := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()

	AddRequestID(next).ServeHTTP(w, r)

	if gotID == 0 {
		t.Errorf("expected a non-zero request id in context")
	}
}
