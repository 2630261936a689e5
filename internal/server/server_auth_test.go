package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brk3/habitbattles/internal/config"
	"github.com/brk3/habitbattles/internal/storage"
	"github.com/brk3/habitbattles/internal/storage/memory"
)

// newTestServerWithAuth configures a single "test" provider backed by a
// discovery-only OIDC stub.
func newTestServerWithAuth(t *testing.T, st storage.Store) http.Handler {
	t.Helper()
	mockOIDC := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		base := "http://" + r.Host
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"issuer": "` + base + `",
			"authorization_endpoint": "` + base + `/auth",
			"token_endpoint": "` + base + `/token",
			"jwks_uri": "` + base + `/keys"
		}`))
	}))
	t.Cleanup(mockOIDC.Close)

	cfg := &config.Config{
		AuthEnabled: true,
		OIDCProviders: []config.OIDCProviderConfig{{
			Id:        "test",
			Name:      "Test IdP",
			IssuerURL: mockOIDC.URL,
			ClientID:  "test",
		}},
	}
	s, err := New(cfg, st)
	if err != nil {
		t.Fatalf("error creating server: %v", err)
	}
	return s.Router()
}

func TestLogin_RedirectsToIDPWithPKCE(t *testing.T) {
	h := newTestServerWithAuth(t, memory.New())

	rr := mockRequest(h, http.MethodGet, "/auth/login/test?return=https://evil.example/", nil)
	if rr.Code != http.StatusFound {
		t.Fatalf("got %d want 302", rr.Code)
	}
	loc, err := rr.Result().Location()
	if err != nil {
		t.Fatalf("error getting location: %v", err)
	}
	if loc.Path != "/auth" {
		t.Fatalf("got redirect to %s, want /auth on test host", loc)
	}
	q := loc.Query()
	if q.Get("code_challenge_method") != "S256" || q.Get("code_challenge") == "" || q.Get("state") == "" {
		t.Errorf("missing PKCE parameters in %s", loc)
	}
}

func TestLogin_UnknownProvider(t *testing.T) {
	h := newTestServerWithAuth(t, memory.New())
	if rr := mockRequest(h, http.MethodGet, "/auth/login/nope", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("got %d want 404", rr.Code)
	}
	rr := mockRequest(h, http.MethodGet, "/auth/login", nil)
	if !strings.Contains(rr.Body.String(), "Sign in with Test IdP") {
		t.Errorf("login page missing provider: %s", rr.Body.String())
	}
}

func TestCallback_RejectsUnknownState(t *testing.T) {
	h := newTestServerWithAuth(t, memory.New())
	for _, path := range []string{"/auth/callback/test", "/auth/callback/test?state=abc&code=xyz"} {
		if rr := mockRequest(h, http.MethodGet, path, nil); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d want 400", path, rr.Code)
		}
	}
}

func TestAuthEnabled_NotLoggedIn(t *testing.T) {
	h := newTestServerWithAuth(t, memory.New())
	tests := []struct {
		accept string
		want   int
	}{
		{"application/json", http.StatusUnauthorized},
		{"text/html", http.StatusFound},
	}
	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/habits/", nil)
			req.Header.Set("Accept", tt.accept)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Fatalf("got %d want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestBearerToken_UnknownProvider(t *testing.T) {
	h := newTestServerWithAuth(t, memory.New())
	req := httptest.NewRequest(http.MethodPost, "/habits/", nil)
	req.Header.Set("Authorization", "Bearer other:eyJhbGciOi")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("got %d want 401", rr.Code)
	}
}

func TestUserIDFromContext(t *testing.T) {
	claims := map[string]any{"iss": "https://test-issuer.com", "sub": "test-subject"}
	withUser := httptest.NewRequest(http.MethodGet, "/test", nil)
	withUser = withUser.WithContext(context.WithValue(withUser.Context(), userCtxKey{}, &User{UserID: userIDFromClaims(claims)}))
	bare := httptest.NewRequest(http.MethodGet, "/test", nil)

	if got := userIDFromContext(true, withUser); !strings.HasPrefix(got, "user-") {
		t.Errorf("valid user: got %q, want user- prefix", got)
	}
	if got := userIDFromContext(false, bare); got != anonymousUser {
		t.Errorf("auth disabled: got %q, want %q", got, anonymousUser)
	}
	if got := userIDFromContext(true, bare); got != "" {
		t.Errorf("no user in context: got %q, want empty", got)
	}
}

func TestUserIDFromClaims_Stable(t *testing.T) {
	a := userIDFromClaims(map[string]any{"iss": "https://a", "sub": "1"})
	b := userIDFromClaims(map[string]any{"iss": "https://a", "sub": "1"})
	c := userIDFromClaims(map[string]any{"iss": "https://b", "sub": "1"})
	if a != b || a == c {
		t.Errorf("ids: %q %q %q", a, b, c)
	}
	if userIDFromClaims(map[string]any{"sub": "1"}) != "" {
		t.Error("missing issuer should yield empty id")
	}
}

func TestParseProviderToken(t *testing.T) {
	tests := []struct {
		in       string
		provider string
		wantErr  bool
	}{
		{"google:abc.def", "google", false},
		{"", "", true},
		{"nocolon", "", true},
		{":jwt", "", true},
		{"google:", "", true},
	}
	for _, tt := range tests {
		p, _, err := parseProviderToken(tt.in)
		if (err != nil) != tt.wantErr || p != tt.provider {
			t.Errorf("parseProviderToken(%q) = %q, %v", tt.in, p, err)
		}
	}
}

func TestSafeReturn(t *testing.T) {
	tests := map[string]string{
		"":                      "/",
		"/calendar?view=year":   "/calendar?view=year",
		"https://evil.example/": "/",
		"//evil.example/x":      "/",
	}
	for in, want := range tests {
		if got := safeReturn(in); got != want {
			t.Errorf("safeReturn(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStateStore_SingleUseAndExpiry(t *testing.T) {
	s := &StateStore{ttl: time.Minute, m: make(map[string]authState)}
	s.Put("live", authState{Verifier: "v", ExpireAt: time.Now().Add(time.Minute)})
	s.Put("old", authState{Verifier: "v", ExpireAt: time.Now().Add(-time.Second)})

	if _, ok := s.GetAndDelete("live"); !ok {
		t.Fatal("live state missing")
	}
	if _, ok := s.GetAndDelete("live"); ok {
		t.Fatal("state reused")
	}
	if _, ok := s.GetAndDelete("old"); ok {
		t.Fatal("expired state accepted")
	}
}
