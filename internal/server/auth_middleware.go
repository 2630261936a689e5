package server

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/brk3/habitbattles/internal/config"
	"github.com/brk3/habitbattles/internal/logger"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2"
)

const (
	sessionCookieName = "session"
	sessionMaxAge     = 24 * time.Hour
	apiKeyPrefix      = "hab_"
	anonymousUser     = "anonymous"
)

var (
	errNoCredentials  = errors.New("no credentials")
	errBadCredentials = errors.New("invalid credentials")
)

type userCtxKey struct{}

// User is the authenticated caller. UserID keys all stored data.
type User struct {
	Subject string
	Email   string
	UserID  string
	Claims  map[string]any
}

// StateStore holds PKCE verifiers between /auth/login and the callback.
type StateStore struct {
	ttl time.Duration
	mu  sync.Mutex
	m   map[string]authState
}

type authState struct {
	Verifier string
	Return   string
	ExpireAt time.Time
}

func NewStateStore(ttl time.Duration) *StateStore {
	s := &StateStore{ttl: ttl, m: make(map[string]authState)}
	go s.expireLoop(time.Minute)
	return s
}

func (s *StateStore) expireLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for now := range ticker.C {
		s.mu.Lock()
		for k, v := range s.m {
			if now.After(v.ExpireAt) {
				delete(s.m, k)
			}
		}
		s.mu.Unlock()
	}
}

func (s *StateStore) Put(key string, v authState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = v
}

// GetAndDelete consumes key; expired entries are reported as missing.
func (s *StateStore) GetAndDelete(key string) (authState, bool) {
	s.mu.Lock()
	v, ok := s.m[key]
	delete(s.m, key)
	s.mu.Unlock()
	if !ok || time.Now().After(v.ExpireAt) {
		return authState{}, false
	}
	return v, true
}

func ConfigureOIDCProviders(cfg *config.Config) (map[string]*AuthProvider, *securecookie.SecureCookie, error) {
	hashKey := securecookie.GenerateRandomKey(64)
	blockKey := securecookie.GenerateRandomKey(32)
	if hashKey == nil || blockKey == nil {
		return nil, nil, fmt.Errorf("failed to generate secure cookie keys")
	}
	sessionCookie := securecookie.New(hashKey, blockKey)
	sessionCookie.MaxAge(int(sessionMaxAge.Seconds()))

	providers := make(map[string]*AuthProvider, len(cfg.OIDCProviders))
	for _, p := range cfg.OIDCProviders {
		prov, err := newAuthProvider(p)
		if err != nil {
			return nil, nil, err
		}
		providers[p.Id] = prov
	}
	logger.Info("Configured OIDC providers", "count", len(providers))
	return providers, sessionCookie, nil
}

func newAuthProvider(p config.OIDCProviderConfig) (*AuthProvider, error) {
	logger.Debug("Discovering OIDC provider", "id", p.Id, "issuer", p.IssuerURL)
	prov, err := oidc.NewProvider(context.Background(), p.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc provider %s: %w", p.Id, err)
	}
	scopes := p.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "email", "profile"}
	}
	return &AuthProvider{
		name: p.Name,
		oauth2: &oauth2.Config{
			ClientID:     p.ClientID,
			ClientSecret: p.ClientSecret,
			Endpoint:     prov.Endpoint(),
			RedirectURL:  p.RedirectURL,
			Scopes:       scopes,
		},
		oidcProv:   prov,
		idVerifier: prov.Verifier(&oidc.Config{ClientID: p.ClientID}),
		state:      NewStateStore(5 * time.Minute),
	}, nil
}

// authMiddleware accepts, in order: a session cookie, a hab_ API key, or a
// "provider:jwt" bearer token.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, method, err := s.authenticate(r)
		if err != nil {
			RecordAuthEvent("verification", failureResult(err), method)
			s.handleAuthFailure(w, r, errors.Is(err, errBadCredentials) && method != "apikey")
			return
		}
		RecordAuthEvent("verification", "success", method)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey{}, user)))
	})
}

func failureResult(err error) string {
	if errors.Is(err, errNoCredentials) {
		return "missing_token"
	}
	return "failed"
}

// authenticate resolves the caller. method names the credential that was
// tried, for metrics.
func (s *Server) authenticate(r *http.Request) (*User, string, error) {
	providerID, rawIDToken := s.sessionToken(r)

	if rawIDToken == "" {
		bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if ok && strings.HasPrefix(bearer, apiKeyPrefix) {
			if user, found := s.authenticateAPIKey(bearer); found {
				return user, "apikey", nil
			}
			return nil, "apikey", errBadCredentials
		}
		if pID, token, err := parseProviderToken(bearer); err == nil {
			providerID, rawIDToken = pID, token
		}
	}
	if rawIDToken == "" {
		return nil, "unknown", errNoCredentials
	}

	prov, ok := s.authProviders[providerID]
	if !ok {
		logger.Debug("Unknown auth provider", "provider", providerID)
		return nil, "unknown", errNoCredentials
	}
	idTok, err := prov.idVerifier.Verify(r.Context(), rawIDToken)
	if err != nil {
		logger.Debug("ID token verification failed", "provider", providerID, "error", err)
		return nil, providerID, errBadCredentials
	}
	var claims map[string]any
	if err := idTok.Claims(&claims); err != nil {
		logger.Error("Failed to extract claims from token", "error", err)
		return nil, providerID, errBadCredentials
	}
	return &User{
		Subject: idTok.Subject,
		Email:   strClaim(claims, "email"),
		UserID:  userIDFromClaims(claims),
		Claims:  claims,
	}, providerID, nil
}

// sessionToken returns the provider and ID token held in the session
// cookie, or empty strings.
func (s *Server) sessionToken(r *http.Request) (string, string) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", ""
	}
	var prefixed string
	if err := s.sessionCookie.Decode(sessionCookieName, c.Value, &prefixed); err != nil {
		logger.Debug("Failed to decode session cookie", "error", err)
		return "", ""
	}
	providerID, token, err := parseProviderToken(prefixed)
	if err != nil {
		logger.Debug("Failed to parse session token", "error", err)
		return "", ""
	}
	return providerID, token
}

// parseProviderToken splits a "provider:jwt" token.
func parseProviderToken(token string) (providerID, jwt string, err error) {
	providerID, jwt, found := strings.Cut(token, ":")
	switch {
	case token == "":
		return "", "", fmt.Errorf("empty token")
	case !found:
		return "", "", fmt.Errorf("invalid token format: expected 'provider:jwt'")
	case providerID == "":
		return "", "", fmt.Errorf("empty provider ID")
	case jwt == "":
		return "", "", fmt.Errorf("empty JWT token")
	}
	return providerID, jwt, nil
}

func strClaim(m map[string]any, k string) string {
	v, _ := m[k].(string)
	return v
}

// userIDFromClaims derives a stable user ID from the issuer and subject.
func userIDFromClaims(claims map[string]any) string {
	iss, sub := strClaim(claims, "iss"), strClaim(claims, "sub")
	if iss == "" || sub == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(iss + "|" + sub))
	return fmt.Sprintf("user-%x", hash[:8])
}

func userIDFromContext(authEnabled bool, r *http.Request) string {
	if !authEnabled {
		return anonymousUser
	}
	user, ok := r.Context().Value(userCtxKey{}).(*User)
	if !ok {
		logger.Error("No user in context")
		return ""
	}
	return user.UserID
}

// handleAuthFailure redirects browsers to the login page and sends API
// clients a 401.
func (s *Server) handleAuthFailure(w http.ResponseWriter, r *http.Request, clearCookie bool) {
	if clearCookie {
		http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", MaxAge: -1})
	}

	accept := r.Header.Get("Accept")
	if r.Method == http.MethodGet && (accept == "" || strings.Contains(accept, "text/html")) {
		http.Redirect(w, r, "/auth/login", http.StatusFound)
		return
	}
	challenge := `Bearer realm="habits"`
	if clearCookie {
		challenge = `Bearer error="invalid_token"`
	}
	w.Header().Set("WWW-Authenticate", challenge)
	writeError(w, http.StatusUnauthorized, "unauthorized")
}

// authenticateAPIKey resolves an API key to its owning user.
func (s *Server) authenticateAPIKey(apiKey string) (*User, bool) {
	keyHash := hashAPIKey(apiKey)
	userID, found, err := s.store.GetAPIKey(keyHash)
	if err != nil {
		logger.Error("Failed to lookup API key", "error", err)
		return nil, false
	}
	if !found {
		logger.Debug("API key not found", "key", truncateHash(keyHash))
		return nil, false
	}
	return &User{
		UserID:  userID,
		Subject: "apikey:" + truncateHash(keyHash),
		Claims:  map[string]any{"auth_method": "api_key"},
	}, true
}
