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

const cycleColumns = "id, name, host_id, frequency_days, payment_amount, start_date, has_started, has_ended, created_at"

// CreateCycle persists a new cycle and the host's membership in one
// transaction; a cycle with no members is not a state this store can produce.
func (s *SQLiteStore) CreateCycle(ctx context.Context, cycle *models.Cycle) error {
	if cycle.ID == "" {
		cycle.ID = uuid.New().String()
	}
	if cycle.CreatedAt == 0 {
		cycle.CreatedAt = time.Now().Unix()
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cycles (id, name, host_id, frequency_days, payment_amount, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			cycle.ID, cycle.Name, cycle.HostID, cycle.FrequencyDays, cycle.PaymentAmount, cycle.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert cycle: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO cycle_members (id, user_id, cycle_id) VALUES (?, ?, ?)",
			uuid.New().String(), cycle.HostID, cycle.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert host membership: %w", err)
		}

		return nil
	})
}

// GetCycle retrieves a cycle by ID.
func (s *SQLiteStore) GetCycle(ctx context.Context, id string) (*models.Cycle, error) {
	cycle := &models.Cycle{}
	err := s.db.QueryRowContext(ctx,
		"SELECT "+cycleColumns+" FROM cycles WHERE id = ?", id,
	).Scan(
		&cycle.ID, &cycle.Name, &cycle.HostID, &cycle.FrequencyDays, &cycle.PaymentAmount,
		&cycle.StartDate, &cycle.HasStarted, &cycle.HasEnded, &cycle.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // Cycle not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cycle: %w", err)
	}

	return cycle, nil
}

// ListCyclesByUser retrieves every cycle the user is a member of, newest
// first.
func (s *SQLiteStore) ListCyclesByUser(ctx context.Context, userID string) ([]*models.Cycle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.host_id, c.frequency_days, c.payment_amount,
		        c.start_date, c.has_started, c.has_ended, c.created_at
		 FROM cycles c
		 JOIN cycle_members m ON m.cycle_id = c.id
		 WHERE m.user_id = ?
		 ORDER BY c.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles by user: %w", err)
	}
	defer rows.Close()

	var cycles []*models.Cycle
	for rows.Next() {
		cycle := &models.Cycle{}
		if err := rows.Scan(
			&cycle.ID, &cycle.Name, &cycle.HostID, &cycle.FrequencyDays, &cycle.PaymentAmount,
			&cycle.StartDate, &cycle.HasStarted, &cycle.HasEnded, &cycle.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		cycles = append(cycles, cycle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cycles: %w", err)
	}

	return cycles, nil
}

// StartCycle flips the started flag, stamps the start date, and creates the
// session and payment fan-out in one transaction: one session per member with
// due dates chained by the cycle's frequency, then one unpaid payment per
// (member, session) pair. Every row is in place when StartCycle returns.
func (s *SQLiteStore) StartCycle(ctx context.Context, cycleID string, startAt time.Time) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var frequencyDays int
		var hasStarted bool
		err := tx.QueryRowContext(ctx,
			"SELECT frequency_days, has_started FROM cycles WHERE id = ?", cycleID,
		).Scan(&frequencyDays, &hasStarted)
		if err == sql.ErrNoRows {
			return fmt.Errorf("cycle not found: %s", cycleID)
		}
		if err != nil {
			return fmt.Errorf("failed to get cycle: %w", err)
		}
		if hasStarted {
			return storage.ErrAlreadyStarted
		}

		// Membership is frozen to the members present right here.
		rows, err := tx.QueryContext(ctx,
			"SELECT id FROM cycle_members WHERE cycle_id = ?", cycleID,
		)
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}
		var memberIDs []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan member: %w", err)
			}
			memberIDs = append(memberIDs, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate members: %w", err)
		}
		if len(memberIDs) < 2 {
			return storage.ErrTooFewMembers
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE cycles SET has_started = 1, start_date = ? WHERE id = ?",
			startAt.Unix(), cycleID,
		)
		if err != nil {
			return fmt.Errorf("failed to mark cycle started: %w", err)
		}

		// One session per member, due dates chained: first = start +
		// frequency, each next = previous + frequency.
		frequency := time.Duration(frequencyDays) * 24 * time.Hour
		due := startAt.Add(frequency)
		sessionIDs := make([]string, 0, len(memberIDs))
		for range memberIDs {
			sessionID := uuid.New().String()
			_, err = tx.ExecContext(ctx,
				"INSERT INTO sessions (id, cycle_id, due_date) VALUES (?, ?, ?)",
				sessionID, cycleID, due.Unix(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert session: %w", err)
			}
			sessionIDs = append(sessionIDs, sessionID)
			due = due.Add(frequency)
		}

		// One payment per (member, session) pair, all unpaid.
		for _, sessionID := range sessionIDs {
			for _, memberID := range memberIDs {
				_, err = tx.ExecContext(ctx,
					"INSERT INTO payments (id, membership_id, session_id) VALUES (?, ?, ?)",
					uuid.New().String(), memberID, sessionID,
				)
				if err != nil {
					return fmt.Errorf("failed to insert payment: %w", err)
				}
			}
		}

		return nil
	})
}

// DeleteCycle removes a cycle; invites, memberships, sessions and payments go
// with it via cascading foreign keys.
func (s *SQLiteStore) DeleteCycle(ctx context.Context, cycleID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM cycles WHERE id = ?", cycleID)
	if err != nil {
		return fmt.Errorf("failed to delete cycle: %w", err)
	}
	return nil
}

// ListMembers retrieves the memberships of a cycle.
func (s *SQLiteStore) ListMembers(ctx context.Context, cycleID string) ([]*models.Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, cycle_id, has_received FROM cycle_members WHERE cycle_id = ?",
		cycleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Membership
	for rows.Next() {
		m := &models.Membership{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.CycleID, &m.HasReceived); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", err)
	}

	return members, nil
}

// GetMembership retrieves the membership linking a user to a cycle.
func (s *SQLiteStore) GetMembership(ctx context.Context, cycleID, userID string) (*models.Membership, error) {
	m := &models.Membership{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, cycle_id, has_received FROM cycle_members WHERE cycle_id = ? AND user_id = ?",
		cycleID, userID,
	).Scan(&m.ID, &m.UserID, &m.CycleID, &m.HasReceived)
	if err == sql.ErrNoRows {
		return nil, nil // Not a member
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return m, nil
}
