package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/shared"
	"golang.org/x/oauth2"
)

// TokenRepository stores the OAuth2 token set in SQLite.
//
// A single row (id = 1) holds the current session; saving replaces it.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a TokenRepository backed by the given database.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Init creates the token table if it does not exist.
func (r *TokenRepository) Init() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS auth_tokens (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL DEFAULT '',
			token_type TEXT NOT NULL DEFAULT 'Bearer',
			expiry TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("failed to create auth_tokens table: %w", err)
	}
	return nil
}

// Save persists the token, replacing any previously stored one.
func (r *TokenRepository) Save(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidArgument)
	}

	_, err := r.db.Exec(`
		INSERT INTO auth_tokens (id, access_token, refresh_token, token_type, expiry, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			updated_at = excluded.updated_at`,
		token.AccessToken, token.RefreshToken, token.TokenType, token.Expiry, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Load returns the stored token, or [shared.ErrNoStoredToken] when the user
// has not authenticated yet.
func (r *TokenRepository) Load() (*oauth2.Token, error) {
	row := r.db.QueryRow(`
		SELECT access_token, refresh_token, token_type, expiry
		FROM auth_tokens WHERE id = 1`)

	var token oauth2.Token
	var expiry sql.NullTime
	if err := row.Scan(&token.AccessToken, &token.RefreshToken, &token.TokenType, &expiry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNoStoredToken
		}
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if expiry.Valid {
		token.Expiry = expiry.Time
	}

	return &token, nil
}

// Clear deletes the stored token.
func (r *TokenRepository) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM auth_tokens WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}
