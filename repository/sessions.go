package repository

import (
	"context"
	"fmt"

	"github.com/l1emant/insidex-web/models"

	"github.com/jackc/pgx/v5"
)

// CreateSession inserts a new session
func (r *Repository) CreateSession(ctx context.Context, session *models.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, session.Token, session.UserID, session.ExpiresAt)

	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetSession returns the session for a token, or nil when the token is
// unknown or already expired. Expiry is checked in the database to avoid
// clock skew between app and store.
func (r *Repository) GetSession(ctx context.Context, token string) (*models.Session, error) {
	var s models.Session
	err := r.db.QueryRow(ctx, `
		SELECT token, user_id, expires_at
		FROM sessions WHERE token = $1 AND expires_at > NOW()
	`, token).Scan(&s.Token, &s.UserID, &s.ExpiresAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return &s, nil
}

// DeleteSession removes a session by token
func (r *Repository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all expired sessions and returns how many
// were deleted. Called periodically by the maintenance scheduler.
func (r *Repository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected(), nil
}
