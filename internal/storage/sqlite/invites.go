package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/seetoh/bagelfunds/internal/models"
	"github.com/seetoh/bagelfunds/internal/storage"
)

// CreateInvite persists a pending invite.
func (s *SQLiteStore) CreateInvite(ctx context.Context, invite *models.Invite) error {
	if invite.ID == "" {
		invite.ID = uuid.New().String()
	}
	if invite.CreatedAt == 0 {
		invite.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO invites (id, cycle_id, user_id, created_at) VALUES (?, ?, ?, ?)",
		invite.ID, invite.CycleID, invite.UserID, invite.CreatedAt,
	)
	if isUniqueViolation(err) {
		return storage.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert invite: %w", err)
	}

	return nil
}

// GetInvite retrieves an invite by ID.
func (s *SQLiteStore) GetInvite(ctx context.Context, id string) (*models.Invite, error) {
	invite := &models.Invite{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, cycle_id, user_id, created_at FROM invites WHERE id = ?", id,
	).Scan(&invite.ID, &invite.CycleID, &invite.UserID, &invite.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil // Invite not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	return invite, nil
}

// ListInvitesForUser retrieves the user's pending invites joined with cycle
// and host details, newest first.
func (s *SQLiteStore) ListInvitesForUser(ctx context.Context, userID string) ([]*models.InviteNotification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT i.id, i.cycle_id, i.user_id, i.created_at,
		        c.name, c.payment_amount, c.frequency_days, u.username
		 FROM invites i
		 JOIN cycles c ON c.id = i.cycle_id
		 JOIN users u ON u.id = c.host_id
		 WHERE i.user_id = ?
		 ORDER BY i.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites for user: %w", err)
	}
	defer rows.Close()

	var notifications []*models.InviteNotification
	for rows.Next() {
		n := &models.InviteNotification{}
		if err := rows.Scan(
			&n.Invite.ID, &n.Invite.CycleID, &n.Invite.UserID, &n.Invite.CreatedAt,
			&n.CycleName, &n.PaymentAmount, &n.FrequencyDays, &n.HostUsername,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invites: %w", err)
	}

	return notifications, nil
}

// AcceptInvite deletes the invite and inserts the membership it promised, in
// one transaction.
func (s *SQLiteStore) AcceptInvite(ctx context.Context, inviteID string) (*models.Membership, error) {
	membership := &models.Membership{ID: uuid.New().String()}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			"SELECT cycle_id, user_id FROM invites WHERE id = ?", inviteID,
		).Scan(&membership.CycleID, &membership.UserID)
		if err == sql.ErrNoRows {
			return fmt.Errorf("invite not found: %s", inviteID)
		}
		if err != nil {
			return fmt.Errorf("failed to get invite: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM invites WHERE id = ?", inviteID); err != nil {
			return fmt.Errorf("failed to delete invite: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO cycle_members (id, user_id, cycle_id) VALUES (?, ?, ?)",
			membership.ID, membership.UserID, membership.CycleID,
		)
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		if err != nil {
			return fmt.Errorf("failed to insert membership: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return membership, nil
}

// DeleteInvite removes an invite.
func (s *SQLiteStore) DeleteInvite(ctx context.Context, inviteID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM invites WHERE id = ?", inviteID)
	if err != nil {
		return fmt.Errorf("failed to delete invite: %w", err)
	}
	return nil
}
