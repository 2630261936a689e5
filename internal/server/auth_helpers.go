package server

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/brk3/habitbattles/internal/logger"
	"github.com/go-chi/chi/v5"
)

const liveKeyPrefix = apiKeyPrefix + "live_"

// hashAPIKey creates a SHA256 hash of an API key for storage
func hashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return fmt.Sprintf("%x", hash)
}

// truncateHash returns the first 16 chars of hash followed by "...".
func truncateHash(hash string) string {
	if len(hash) <= 16 {
		return hash
	}
	return hash[:16] + "..."
}

func hashPrefix(hash string) string {
	return strings.TrimSuffix(truncateHash(hash), "...")
}

func (s *Server) generateAPIKey(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(userCtxKey{}).(*User)
	if !ok || user.UserID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		writeError(w, http.StatusInternalServerError, "key generation failed")
		return
	}
	apiKey := liveKeyPrefix + hex.EncodeToString(raw)
	keyHash := hashAPIKey(apiKey)

	if err := s.store.PutAPIKey(keyHash, user.UserID); err != nil {
		logger.Error("Failed to store API key", "user_id", user.UserID, "error", err)
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	logger.Info("Generated API key", "user_id", user.UserID, "key", truncateHash(keyHash))
	RecordAuthEvent("apikey", "generated", "apikey")

	if err := writeJSON(w, http.StatusOK, APIKeyResponse{APIKey: apiKey, Prefix: hashPrefix(keyHash)}); err != nil {
		logger.Error("Failed to serialize API key response", "error", err)
	}
}

func (s *Server) listAPIKeys(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(userCtxKey{}).(*User)
	if !ok || user.UserID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	hashes, err := s.store.ListAPIKeyHashes(user.UserID)
	if err != nil {
		logger.Error("Failed to list API keys", "user_id", user.UserID, "error", err)
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	resp := APIKeyListResponse{Keys: make([]APIKeyInfo, 0, len(hashes))}
	for _, h := range hashes {
		resp.Keys = append(resp.Keys, APIKeyInfo{Prefix: hashPrefix(h)})
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.Error("Failed to serialize API key list", "error", err)
	}
}

// deleteAPIKey revokes the caller's key whose hash starts with {prefix}.
func (s *Server) deleteAPIKey(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(userCtxKey{}).(*User)
	if !ok || user.UserID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	prefix := chi.URLParam(r, "prefix")
	if len(prefix) < 8 {
		writeError(w, http.StatusBadRequest, "prefix must be at least 8 characters")
		return
	}

	hashes, err := s.store.ListAPIKeyHashes(user.UserID)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	var matches []string
	for _, h := range hashes {
		if strings.HasPrefix(h, prefix) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		writeError(w, http.StatusNotFound, "api key not found")
		return
	case 1:
	default:
		writeError(w, http.StatusBadRequest, "prefix matches more than one key")
		return
	}

	if err := s.store.DeleteAPIKey(matches[0]); err != nil {
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	logger.Info("Deleted API key", "user_id", user.UserID, "key", truncateHash(matches[0]))
	w.WriteHeader(http.StatusNoContent)
}
