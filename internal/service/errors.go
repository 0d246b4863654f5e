// Package service implements the bagelfunds workflows on top of a
// storage.Store: cycle lifecycle, invites, payment verification and the
// winner draw.
package service

import "errors"

// Business-rule rejections. Handlers map these to 4xx responses; anything
// else coming out of a service is a storage fault and maps to a 500.
var (
	ErrNotFound          = errors.New("not found")
	ErrNotHost           = errors.New("only the host may do this")
	ErrInvalidInput      = errors.New("invalid input")
	ErrSelfInvite        = errors.New("you cannot invite yourself")
	ErrAlreadyMember     = errors.New("user is already in this cycle")
	ErrAlreadyInvited    = errors.New("user is already invited")
	ErrNotInvitee        = errors.New("invite is addressed to another user")
	ErrCycleStarted      = errors.New("cycle has already started")
	ErrTooFewMembers     = errors.New("cycle needs at least 2 members to start")
	ErrNoEligibleMembers = errors.New("every member has already won a session")
	ErrWinnerDrawn       = errors.New("session already has a winner")
)
