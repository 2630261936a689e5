package server

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/brk3/habitbattles/internal/logger"
	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"
)

// provider looks up the {id} route parameter, writing 404 if unknown.
func (s *Server) provider(w http.ResponseWriter, r *http.Request) (string, *AuthProvider, bool) {
	id := chi.URLParam(r, "id")
	p, ok := s.authProviders[id]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown auth provider")
	}
	return id, p, ok
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// newPKCE returns a verifier and its S256 challenge.
func newPKCE() (verifier, challenge string, err error) {
	raw, err := randomBytes(48)
	if err != nil {
		return "", "", err
	}
	verifier = base64.RawURLEncoding.EncodeToString(raw)
	sum := sha256.Sum256([]byte(verifier))
	return verifier, base64.RawURLEncoding.EncodeToString(sum[:]), nil
}

// safeReturn keeps only relative return paths.
func safeReturn(ret string) string {
	if ret == "" {
		return "/"
	}
	if u, err := url.Parse(ret); err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	return ret
}

func setSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	_, prov, ok := s.provider(w, r)
	if !ok {
		return
	}
	verifier, challenge, err := newPKCE()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "pkce generation failed")
		return
	}
	stateBytes, err := randomBytes(16)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "state generation failed")
		return
	}
	state := hex.EncodeToString(stateBytes)

	prov.state.Put(state, authState{
		Verifier: verifier,
		Return:   safeReturn(r.URL.Query().Get("return")),
		ExpireAt: time.Now().Add(prov.state.ttl),
	})
	http.Redirect(w, r, prov.oauth2.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	), http.StatusFound)
}

func (s *Server) callback(w http.ResponseWriter, r *http.Request) {
	id, prov, ok := s.provider(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	state, code := q.Get("state"), q.Get("code")
	if state == "" || code == "" {
		writeError(w, http.StatusBadRequest, "missing state or code")
		return
	}
	saved, ok := prov.state.GetAndDelete(state)
	if !ok || saved.Verifier == "" {
		writeError(w, http.StatusBadRequest, "invalid or expired state")
		return
	}

	tok, err := prov.oauth2.Exchange(r.Context(), code, oauth2.SetAuthURLParam("code_verifier", saved.Verifier))
	if err != nil {
		logger.Warn("OIDC code exchange failed", "provider", id, "error", err)
		RecordAuthEvent("login", "exchange_failed", id)
		writeError(w, http.StatusBadGateway, "code exchange failed")
		return
	}
	rawIDToken, _ := tok.Extra("id_token").(string)
	if rawIDToken == "" {
		writeError(w, http.StatusBadGateway, "no id_token in response")
		return
	}
	if _, err := prov.idVerifier.Verify(r.Context(), rawIDToken); err != nil {
		RecordAuthEvent("login", "invalid_token", id)
		writeError(w, http.StatusUnauthorized, "id_token invalid")
		return
	}

	val, err := s.sessionCookie.Encode(sessionCookieName, id+":"+rawIDToken)
	if err != nil {
		logger.Error("Failed to encode session cookie", "error", err)
		writeError(w, http.StatusInternalServerError, "session encoding failed")
		return
	}
	setSessionCookie(w, val, int(sessionMaxAge.Seconds()))
	RecordAuthEvent("login", "success", id)
	http.Redirect(w, r, saved.Return, http.StatusFound)
}

func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	setSessionCookie(w, "", -1)
	logger.Info("User logged out")
	w.WriteHeader(http.StatusNoContent)
}

// simpleLogin lists one button per configured provider.
func (s *Server) simpleLogin(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<h1>Habits</h1><style>button{display:block;margin:10px 0;padding:10px 20px;}</style>`)

	ids := make([]string, 0, len(s.authProviders))
	for id := range s.authProviders {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		fmt.Fprintf(w, `<form action="/auth/login/%s"><button>Sign in with %s</button></form>`,
			url.PathEscape(id), html.EscapeString(s.authProviders[id].name))
	}
}
