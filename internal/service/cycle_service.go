package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/seetoh/bagelfunds/internal/models"
	"github.com/seetoh/bagelfunds/internal/storage"
)

// CycleService implements the cycle lifecycle: create, start, cancel, plus
// the member-facing overview and dashboard reads.
type CycleService struct {
	store storage.Store
}

// NewCycleService creates a new CycleService with the given storage backend.
func NewCycleService(store storage.Store) *CycleService {
	return &CycleService{store: store}
}

// Member is a membership joined with the member's username for display.
type Member struct {
	Membership models.Membership
	Username   string
}

// SessionDetail is a session together with its payments.
type SessionDetail struct {
	Session  models.Session
	Payments []*models.Payment
}

// Overview is everything a member sees about one cycle.
type Overview struct {
	Cycle    *models.Cycle
	Members  []Member
	Sessions []SessionDetail
}

// Dashboard is what a signed-in user sees on the landing page.
type Dashboard struct {
	User   *models.User
	Cycles []*models.Cycle
}

// Create creates a cycle hosted by hostID. The host's membership is created
// with it.
func (s *CycleService) Create(ctx context.Context, hostID, name string, frequencyDays int, paymentAmount float64) (*models.Cycle, error) {
	if name == "" || frequencyDays <= 0 || paymentAmount <= 0 {
		return nil, ErrInvalidInput
	}

	cycle := &models.Cycle{
		Name:          name,
		HostID:        hostID,
		FrequencyDays: frequencyDays,
		PaymentAmount: paymentAmount,
	}

	if err := s.store.CreateCycle(ctx, cycle); err != nil {
		slog.Error("create cycle failed", "host_id", hostID, "error", err)
		return nil, err
	}

	slog.Info("cycle created", "cycle_id", cycle.ID, "host_id", hostID, "name", name)
	return cycle, nil
}

// Start starts the cycle: only the host may start, the cycle needs at least
// two members, and starting creates the full session and payment fan-out
// before Start returns.
func (s *CycleService) Start(ctx context.Context, callerID, cycleID string) error {
	cycle, err := s.hostedCycle(ctx, callerID, cycleID)
	if err != nil {
		return err
	}
	if cycle.HasStarted {
		return ErrCycleStarted
	}

	if err := s.store.StartCycle(ctx, cycleID, time.Now()); err != nil {
		switch {
		case errors.Is(err, storage.ErrTooFewMembers):
			return ErrTooFewMembers
		case errors.Is(err, storage.ErrAlreadyStarted):
			return ErrCycleStarted
		}
		slog.Error("start cycle failed", "cycle_id", cycleID, "error", err)
		return err
	}

	slog.Info("cycle started", "cycle_id", cycleID, "host_id", callerID)
	return nil
}

// Cancel deletes the cycle and everything hanging off it. Only the host may
// cancel; there is no restriction on the cycle's state.
func (s *CycleService) Cancel(ctx context.Context, callerID, cycleID string) error {
	if _, err := s.hostedCycle(ctx, callerID, cycleID); err != nil {
		return err
	}

	if err := s.store.DeleteCycle(ctx, cycleID); err != nil {
		slog.Error("cancel cycle failed", "cycle_id", cycleID, "error", err)
		return err
	}

	slog.Info("cycle cancelled", "cycle_id", cycleID, "host_id", callerID)
	return nil
}

// Overview assembles the member-facing view of a cycle: members with
// usernames, sessions ordered by due date, and each session's payments.
func (s *CycleService) Overview(ctx context.Context, cycleID string) (*Overview, error) {
	cycle, err := s.store.GetCycle(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	if cycle == nil {
		return nil, ErrNotFound
	}

	memberships, err := s.store.ListMembers(ctx, cycleID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, len(memberships))
	for i, m := range memberships {
		userIDs[i] = m.UserID
	}
	users, err := s.store.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	members := make([]Member, len(memberships))
	for i, m := range memberships {
		member := Member{Membership: *m}
		if u := users[m.UserID]; u != nil {
			member.Username = u.Username
		}
		members[i] = member
	}

	sessions, err := s.store.ListSessions(ctx, cycleID)
	if err != nil {
		return nil, err
	}

	details := make([]SessionDetail, len(sessions))
	for i, session := range sessions {
		payments, err := s.store.ListPaymentsBySession(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		details[i] = SessionDetail{Session: *session, Payments: payments}
	}

	return &Overview{Cycle: cycle, Members: members, Sessions: details}, nil
}

// Dashboard returns the user's profile and every cycle they belong to.
func (s *CycleService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	cycles, err := s.store.ListCyclesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{User: user, Cycles: cycles}, nil
}

// hostedCycle loads the cycle and verifies the caller is its host.
func (s *CycleService) hostedCycle(ctx context.Context, callerID, cycleID string) (*models.Cycle, error) {
	cycle, err := s.store.GetCycle(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	if cycle == nil {
		return nil, ErrNotFound
	}
	if cycle.HostID != callerID {
		return nil, ErrNotHost
	}
	return cycle, nil
}
