// Package models defines the core domain models for bagelfunds.
//
// # Domain
//
// A Cycle is a rotating savings circle: a host gathers members, everyone pays
// a fixed amount into each Session's pool, and one member per session is drawn
// as the winner who collects the pool. Concretely:
//
//   - User: a registered account (username/email login, profile fields)
//   - Cycle: one savings circle, owned by its host
//   - Membership: a user's seat in a cycle; sessions point at the winning seat
//   - Invite: a pending offer of membership, addressed by username
//   - Session: one payout round with a due date and an eventual winner
//   - Payment: one member's obligation to pay into one session
//
// # Design notes
//
// Relationships are expressed as ID strings rather than pointers to avoid
// circular references. IDs are UUIDs generated by the storage layer; times are
// Unix seconds. Once a cycle starts, its sessions and payments are derived
// from the membership present at start time and later joins are not possible.
package models
