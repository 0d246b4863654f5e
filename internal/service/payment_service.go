package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"

	"github.com/seetoh/bagelfunds/internal/models"
	"github.com/seetoh/bagelfunds/internal/storage"
)

// VerifyPayment marks one payment as paid. Only the cycle's host is
// authorized; an unauthorized caller is rejected before anything mutates.
// Once the session's last payment is verified the session is settled, and
// once the cycle's last session settles the cycle ends.
func (s *CycleService) VerifyPayment(ctx context.Context, callerID, cycleID, sessionID, paymentID string) error {
	if _, err := s.hostedCycle(ctx, callerID, cycleID); err != nil {
		return err
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil || session.CycleID != cycleID {
		return ErrNotFound
	}

	payment, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment == nil || payment.SessionID != sessionID {
		return ErrNotFound
	}

	sessionSettled, cycleEnded, err := s.store.MarkPaymentPaid(ctx, paymentID)
	if err != nil {
		slog.Error("verify payment failed", "payment_id", paymentID, "error", err)
		return err
	}

	slog.Info("payment verified",
		"cycle_id", cycleID,
		"session_id", sessionID,
		"payment_id", paymentID,
		"session_settled", sessionSettled,
		"cycle_ended", cycleEnded,
	)
	return nil
}

// RandomizeWinner draws a session's winner uniformly at random among the
// memberships that have not yet won a session in this cycle. Only the host
// may draw. Fails when the session already has a winner or when every member
// has already won.
func (s *CycleService) RandomizeWinner(ctx context.Context, callerID, cycleID, sessionID string) (*Member, error) {
	if _, err := s.hostedCycle(ctx, callerID, cycleID); err != nil {
		return nil, err
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.CycleID != cycleID {
		return nil, ErrNotFound
	}
	if session.WinnerID != "" {
		return nil, ErrWinnerDrawn
	}

	memberships, err := s.store.ListMembers(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.store.ListSessions(ctx, cycleID)
	if err != nil {
		return nil, err
	}

	won := make(map[string]bool)
	for _, sess := range sessions {
		if sess.WinnerID != "" {
			won[sess.WinnerID] = true
		}
	}

	var eligible []*models.Membership
	for _, m := range memberships {
		if !won[m.ID] {
			eligible = append(eligible, m)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoEligibleMembers
	}

	winner := eligible[rand.IntN(len(eligible))]

	if err := s.store.SetSessionWinner(ctx, sessionID, winner.ID); err != nil {
		if errors.Is(err, storage.ErrWinnerAssigned) {
			return nil, ErrWinnerDrawn
		}
		slog.Error("set session winner failed", "session_id", sessionID, "error", err)
		return nil, err
	}

	member := &Member{Membership: *winner}
	member.Membership.HasReceived = true
	if user, err := s.store.GetUserByID(ctx, winner.UserID); err == nil && user != nil {
		member.Username = user.Username
	}

	slog.Info("session winner drawn",
		"cycle_id", cycleID,
		"session_id", sessionID,
		"membership_id", winner.ID,
	)
	return member, nil
}
