package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/seetoh/bagelfunds/internal/models"
	"github.com/seetoh/bagelfunds/internal/storage"
)

// ListSessions retrieves a cycle's sessions ordered by due date.
func (s *SQLiteStore) ListSessions(ctx context.Context, cycleID string) ([]*models.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, cycle_id, due_date, winner_id, settled FROM sessions WHERE cycle_id = ? ORDER BY due_date",
		cycleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return sessions, nil
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	session := &models.Session{}
	var winner sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, cycle_id, due_date, winner_id, settled FROM sessions WHERE id = ?", id,
	).Scan(&session.ID, &session.CycleID, &session.DueDate, &winner, &session.Settled)
	if err == sql.ErrNoRows {
		return nil, nil // Session not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if winner.Valid {
		session.WinnerID = winner.String
	}

	return session, nil
}

// SetSessionWinner records the winning membership on a session and flips the
// membership's received flag, in one transaction. The update only matches a
// session without a winner, so concurrent draws cannot overwrite each other.
func (s *SQLiteStore) SetSessionWinner(ctx context.Context, sessionID, membershipID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE sessions SET winner_id = ? WHERE id = ? AND winner_id IS NULL",
			membershipID, sessionID,
		)
		if err != nil {
			return fmt.Errorf("failed to set session winner: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			var exists int
			if err := tx.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM sessions WHERE id = ?", sessionID,
			).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check session: %w", err)
			}
			if exists > 0 {
				return storage.ErrWinnerAssigned
			}
			return fmt.Errorf("session not found: %s", sessionID)
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE cycle_members SET has_received = 1 WHERE id = ?",
			membershipID,
		)
		if err != nil {
			return fmt.Errorf("failed to mark membership received: %w", err)
		}

		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	session := &models.Session{}
	var winner sql.NullString
	if err := row.Scan(&session.ID, &session.CycleID, &session.DueDate, &winner, &session.Settled); err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	if winner.Valid {
		session.WinnerID = winner.String
	}
	return session, nil
}
