package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/seetoh/bagelfunds/internal/models"
)

// GetPayment retrieves a payment by ID.
func (s *SQLiteStore) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	p := &models.Payment{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, membership_id, session_id, has_paid FROM payments WHERE id = ?", id,
	).Scan(&p.ID, &p.MembershipID, &p.SessionID, &p.HasPaid)
	if err == sql.ErrNoRows {
		return nil, nil // Payment not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return p, nil
}

// ListPaymentsBySession retrieves the payments owed into a session.
func (s *SQLiteStore) ListPaymentsBySession(ctx context.Context, sessionID string) ([]*models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, membership_id, session_id, has_paid FROM payments WHERE session_id = ?",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		if err := rows.Scan(&p.ID, &p.MembershipID, &p.SessionID, &p.HasPaid); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}

// MarkPaymentPaid flips a payment's paid flag, settles its session once no
// unpaid payment remains, and ends the cycle once no unsettled session
// remains. All in one transaction.
func (s *SQLiteStore) MarkPaymentPaid(ctx context.Context, paymentID string) (sessionSettled, cycleEnded bool, err error) {
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		var sessionID string
		err := tx.QueryRowContext(ctx,
			"SELECT session_id FROM payments WHERE id = ?", paymentID,
		).Scan(&sessionID)
		if err == sql.ErrNoRows {
			return fmt.Errorf("payment not found: %s", paymentID)
		}
		if err != nil {
			return fmt.Errorf("failed to get payment: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE payments SET has_paid = 1 WHERE id = ?", paymentID,
		); err != nil {
			return fmt.Errorf("failed to mark payment paid: %w", err)
		}

		var unpaid int
		err = tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM payments WHERE session_id = ? AND has_paid = 0", sessionID,
		).Scan(&unpaid)
		if err != nil {
			return fmt.Errorf("failed to count unpaid payments: %w", err)
		}
		if unpaid > 0 {
			return nil
		}

		var cycleID string
		err = tx.QueryRowContext(ctx,
			"UPDATE sessions SET settled = 1 WHERE id = ? RETURNING cycle_id", sessionID,
		).Scan(&cycleID)
		if err != nil {
			return fmt.Errorf("failed to settle session: %w", err)
		}
		sessionSettled = true

		var unsettled int
		err = tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sessions WHERE cycle_id = ? AND settled = 0", cycleID,
		).Scan(&unsettled)
		if err != nil {
			return fmt.Errorf("failed to count unsettled sessions: %w", err)
		}
		if unsettled > 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE cycles SET has_ended = 1 WHERE id = ?", cycleID,
		); err != nil {
			return fmt.Errorf("failed to end cycle: %w", err)
		}
		cycleEnded = true

		return nil
	})
	if err != nil {
		return false, false, err
	}

	return sessionSettled, cycleEnded, nil
}
