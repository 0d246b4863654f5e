// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/seetoh/bagelfunds/internal/models"
)

// Sentinel errors returned by Store implementations. Callers match with
// errors.Is.
var (
	// ErrAlreadyExists is returned when an insert hits a uniqueness rule
	// (duplicate username/email, duplicate invite).
	ErrAlreadyExists = errors.New("storage: already exists")

	// ErrAlreadyStarted is returned by StartCycle when the cycle's started
	// flag is already set.
	ErrAlreadyStarted = errors.New("storage: cycle already started")

	// ErrTooFewMembers is returned by StartCycle when the cycle has fewer
	// than two members.
	ErrTooFewMembers = errors.New("storage: cycle needs at least 2 members")

	// ErrWinnerAssigned is returned by SetSessionWinner when the session
	// already has a winner. A recorded winner is never overwritten.
	ErrWinnerAssigned = errors.New("storage: session winner already assigned")
)

// Store defines the interface for bagelfunds storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Lookups return (nil, nil) when no row matches; callers must check for nil.
// Composite writes (CreateCycle, StartCycle, AcceptInvite, MarkPaymentPaid,
// DeleteCycle) are atomic: either every row mutates or none does.
type Store interface {
	// CreateUser persists a new user. The ID and CreatedAt fields are
	// populated by the store. Returns ErrAlreadyExists on a duplicate
	// username or email.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUsersByIDs retrieves multiple users keyed by ID. Missing users are
	// omitted from the result.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// UpdateUserProfile updates the mutable profile fields of a user.
	UpdateUserProfile(ctx context.Context, id, phone, twitter string) error

	// CreateCycle persists a new cycle and the host's membership in one
	// transaction. The cycle's ID and CreatedAt are populated by the store.
	CreateCycle(ctx context.Context, cycle *models.Cycle) error

	// GetCycle retrieves a cycle by ID.
	GetCycle(ctx context.Context, id string) (*models.Cycle, error)

	// ListCyclesByUser retrieves every cycle the user is a member of,
	// hosted or joined.
	ListCyclesByUser(ctx context.Context, userID string) ([]*models.Cycle, error)

	// StartCycle flips the cycle's started flag, stamps the start date, and
	// creates the session and payment fan-out: one session per current
	// member with due dates chained by the cycle's frequency (first due =
	// start + frequency), and one unpaid payment per (member, session)
	// pair. The whole fan-out runs in one transaction and is complete when
	// StartCycle returns. Returns ErrAlreadyStarted or ErrTooFewMembers.
	StartCycle(ctx context.Context, cycleID string, startAt time.Time) error

	// DeleteCycle removes a cycle and everything hanging off it: invites,
	// memberships, sessions and payments.
	DeleteCycle(ctx context.Context, cycleID string) error

	// ListMembers retrieves the memberships of a cycle.
	ListMembers(ctx context.Context, cycleID string) ([]*models.Membership, error)

	// GetMembership retrieves the membership linking a user to a cycle.
	GetMembership(ctx context.Context, cycleID, userID string) (*models.Membership, error)

	// CreateInvite persists a pending invite. Returns ErrAlreadyExists if
	// the (cycle, invitee) pair already has one.
	CreateInvite(ctx context.Context, invite *models.Invite) error

	// GetInvite retrieves an invite by ID.
	GetInvite(ctx context.Context, id string) (*models.Invite, error)

	// ListInvitesForUser retrieves the user's pending invites joined with
	// cycle and host details, newest first.
	ListInvitesForUser(ctx context.Context, userID string) ([]*models.InviteNotification, error)

	// AcceptInvite deletes the invite and inserts the membership it
	// promised, in one transaction. Returns the new membership.
	AcceptInvite(ctx context.Context, inviteID string) (*models.Membership, error)

	// DeleteInvite removes an invite (decline).
	DeleteInvite(ctx context.Context, inviteID string) error

	// ListSessions retrieves a cycle's sessions ordered by due date.
	ListSessions(ctx context.Context, cycleID string) ([]*models.Session, error)

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, id string) (*models.Session, error)

	// SetSessionWinner records the winning membership on a session and
	// flips the membership's received flag, in one transaction. Returns
	// ErrWinnerAssigned when the session already has a winner.
	SetSessionWinner(ctx context.Context, sessionID, membershipID string) error

	// GetPayment retrieves a payment by ID.
	GetPayment(ctx context.Context, id string) (*models.Payment, error)

	// ListPaymentsBySession retrieves the payments owed into a session.
	ListPaymentsBySession(ctx context.Context, sessionID string) ([]*models.Payment, error)

	// MarkPaymentPaid flips a payment's paid flag; if no unpaid payment
	// remains for its session the session is settled, and if no unsettled
	// session remains for the cycle the cycle is ended. All in one
	// transaction. The returned flags report whether the session settled
	// and whether the cycle ended.
	MarkPaymentPaid(ctx context.Context, paymentID string) (sessionSettled, cycleEnded bool, err error)

	// Close releases any resources held by the store.
	Close() error
}
