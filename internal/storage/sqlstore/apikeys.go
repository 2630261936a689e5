package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/brk3/habitbattles/internal/storage"
)

func (s *Store) PutAPIKey(keyHash, userID string) error {
	_, err := s.exec(context.Background(),
		`INSERT INTO api_keys (key_hash, user_id) VALUES (?, ?)
		 ON CONFLICT (key_hash) DO UPDATE SET user_id = excluded.user_id`, keyHash, userID)
	if err != nil {
		return fmt.Errorf("put api key: %w", err)
	}
	return nil
}

func (s *Store) GetAPIKey(keyHash string) (string, bool, error) {
	var userID string
	err := s.db.QueryRow(s.rebind(`SELECT user_id FROM api_keys WHERE key_hash = ?`), keyHash).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get api key: %w", err)
	}
	return userID, true, nil
}

func (s *Store) ListAPIKeyHashes(userID string) ([]string, error) {
	rows, err := s.query(context.Background(), `SELECT key_hash FROM api_keys WHERE user_id = ? ORDER BY key_hash`, userID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	hashes := []string{}
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}

func (s *Store) DeleteAPIKey(keyHash string) error {
	if _, err := s.exec(context.Background(), `DELETE FROM api_keys WHERE key_hash = ?`, keyHash); err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}
	return nil
}

var _ storage.Store = (*Store)(nil)
