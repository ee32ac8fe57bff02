// package repositories implements persistence for OAuth tokens.
//
// The cleaner keeps no playlist state; the only thing persisted between runs
// is the authenticated session, so the user does not have to re-authorize on
// every invocation.
package repositories

import "database/sql"

// Repositories aggregates all data access objects.
type Repositories struct {
	Tokens *TokenRepository
}

// New creates the repository set and ensures the schema exists.
func New(db *sql.DB) (*Repositories, error) {
	tokens := NewTokenRepository(db)
	if err := tokens.Init(); err != nil {
		return nil, err
	}
	return &Repositories{Tokens: tokens}, nil
}
