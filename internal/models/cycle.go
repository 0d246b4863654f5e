package models

// Cycle represents one rotating savings circle.
type Cycle struct {
	// ID is the unique identifier for the cycle (UUID format).
	ID string

	// Name is the display name of the circle (e.g., "Lunch Club").
	Name string

	// HostID is the user who created the cycle and runs it: only the host
	// may start it, verify payments, draw winners, or cancel it.
	HostID string

	// FrequencyDays is the interval between session due dates, in days.
	FrequencyDays int

	// PaymentAmount is the amount every member pays into each session's pool.
	PaymentAmount float64

	// StartDate is the Unix timestamp when the cycle was started.
	// Zero until HasStarted is set.
	StartDate int64

	// HasStarted is set once the host starts the cycle and the session and
	// payment fan-out has been created.
	HasStarted bool

	// HasEnded is set when the last session settles.
	HasEnded bool

	// CreatedAt is the Unix timestamp when the cycle was created.
	CreatedAt int64
}

// Membership is a user's seat in a cycle. The host's seat is created together
// with the cycle; other seats are created on invite acceptance. Session
// winners point at a Membership, not directly at a User.
type Membership struct {
	// ID is the unique identifier for the membership (UUID format).
	ID string

	// UserID is the member.
	UserID string

	// CycleID is the cycle the member belongs to.
	CycleID string

	// HasReceived is set once this seat has won a session's pool.
	HasReceived bool
}
