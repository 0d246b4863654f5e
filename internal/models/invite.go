package models

// Invite is a pending offer of membership in a cycle. At most one invite
// exists per (cycle, invitee) pair; accepting or declining deletes the row.
type Invite struct {
	// ID is the unique identifier for the invite (UUID format).
	ID string

	// CycleID is the cycle the invitee is being offered a seat in.
	CycleID string

	// UserID is the invitee.
	UserID string

	// CreatedAt is the Unix timestamp when the invite was sent.
	CreatedAt int64
}

// InviteNotification is an invite joined with the cycle and host details
// needed to render a user's pending-invites list.
type InviteNotification struct {
	Invite        Invite
	CycleName     string
	HostUsername  string
	PaymentAmount float64
	FrequencyDays int
}
