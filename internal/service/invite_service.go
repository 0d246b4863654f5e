package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/seetoh/bagelfunds/internal/models"
	"github.com/seetoh/bagelfunds/internal/storage"
)

// InviteService implements the invite lifecycle: send, accept, decline, and
// the notifications listing.
type InviteService struct {
	store storage.Store
}

// NewInviteService creates a new InviteService with the given storage backend.
func NewInviteService(store storage.Store) *InviteService {
	return &InviteService{store: store}
}

// Invite offers username a seat in the cycle. Rejected when the invitee does
// not exist, is the caller, is already a member, is already invited, or when
// the cycle has started (membership is frozen at start time).
func (s *InviteService) Invite(ctx context.Context, callerID, cycleID, username string) (*models.Invite, error) {
	cycle, err := s.store.GetCycle(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	if cycle == nil {
		return nil, ErrNotFound
	}
	if cycle.HasStarted {
		return nil, ErrCycleStarted
	}

	invitee, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if invitee == nil {
		return nil, ErrNotFound
	}
	if invitee.ID == callerID {
		return nil, ErrSelfInvite
	}

	membership, err := s.store.GetMembership(ctx, cycleID, invitee.ID)
	if err != nil {
		return nil, err
	}
	if membership != nil {
		return nil, ErrAlreadyMember
	}

	invite := &models.Invite{CycleID: cycleID, UserID: invitee.ID}
	if err := s.store.CreateInvite(ctx, invite); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, ErrAlreadyInvited
		}
		slog.Error("create invite failed", "cycle_id", cycleID, "invitee", username, "error", err)
		return nil, err
	}

	slog.Info("invite sent", "invite_id", invite.ID, "cycle_id", cycleID, "invitee_id", invitee.ID)
	return invite, nil
}

// Accept turns the caller's invite into a membership. The invite must be
// addressed to the caller and the cycle must not have started.
func (s *InviteService) Accept(ctx context.Context, callerID, inviteID string) (*models.Membership, error) {
	invite, err := s.invitedCycle(ctx, callerID, inviteID)
	if err != nil {
		return nil, err
	}

	cycle, err := s.store.GetCycle(ctx, invite.CycleID)
	if err != nil {
		return nil, err
	}
	if cycle != nil && cycle.HasStarted {
		return nil, ErrCycleStarted
	}

	membership, err := s.store.AcceptInvite(ctx, inviteID)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, ErrAlreadyMember
		}
		slog.Error("accept invite failed", "invite_id", inviteID, "error", err)
		return nil, err
	}

	slog.Info("invite accepted", "invite_id", inviteID, "membership_id", membership.ID)
	return membership, nil
}

// Decline deletes the caller's invite.
func (s *InviteService) Decline(ctx context.Context, callerID, inviteID string) error {
	if _, err := s.invitedCycle(ctx, callerID, inviteID); err != nil {
		return err
	}

	if err := s.store.DeleteInvite(ctx, inviteID); err != nil {
		slog.Error("decline invite failed", "invite_id", inviteID, "error", err)
		return err
	}

	slog.Info("invite declined", "invite_id", inviteID)
	return nil
}

// Notifications lists the caller's pending invites, newest first.
func (s *InviteService) Notifications(ctx context.Context, userID string) ([]*models.InviteNotification, error) {
	return s.store.ListInvitesForUser(ctx, userID)
}

// invitedCycle loads the invite and verifies it is addressed to the caller.
func (s *InviteService) invitedCycle(ctx context.Context, callerID, inviteID string) (*models.Invite, error) {
	invite, err := s.store.GetInvite(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if invite == nil {
		return nil, ErrNotFound
	}
	if invite.UserID != callerID {
		return nil, ErrNotInvitee
	}
	return invite, nil
}
