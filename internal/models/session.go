package models

// Session is one payout round within a started cycle. A cycle with M members
// at start time gets exactly M sessions, with due dates spaced by the cycle's
// frequency.
type Session struct {
	// ID is the unique identifier for the session (UUID format).
	ID string

	// CycleID is the cycle this session belongs to.
	CycleID string

	// DueDate is the Unix timestamp by which all payments are due.
	DueDate int64

	// WinnerID is the Membership drawn to collect this session's pool.
	// Empty until the host randomizes a winner.
	WinnerID string

	// Settled is set when every payment for this session has been verified.
	Settled bool
}

// Payment is one member's obligation to pay into one session's pool. The
// start-cycle fan-out creates one row per (membership, session) pair.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// MembershipID is the paying member's seat.
	MembershipID string

	// SessionID is the session being paid into.
	SessionID string

	// HasPaid is set when the host verifies the payment was made.
	HasPaid bool
}
