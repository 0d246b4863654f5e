package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/seetoh/bagelfunds/internal/models"
	"github.com/seetoh/bagelfunds/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "bagelfunds-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func createTestUser(t *testing.T, store *SQLiteStore, username string) *models.User {
	t.Helper()
	user := models.NewUser(username, username+"@example.com", "hash-"+username)
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", username, err)
	}
	return user
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateUser generates ID and timestamp", func(t *testing.T) {
		user := createTestUser(t, store, "alice")
		if user.ID == "" {
			t.Error("Expected user ID to be generated")
		}
		if user.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		dup := models.NewUser("alice", "other@example.com", "hash")
		if err := store.CreateUser(ctx, dup); !errors.Is(err, storage.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		dup := models.NewUser("alice2", "alice@example.com", "hash")
		if err := store.CreateUser(ctx, dup); !errors.Is(err, storage.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("lookups return nil for missing rows", func(t *testing.T) {
		user, err := store.GetUserByUsername(ctx, "nobody")
		if err != nil {
			t.Fatalf("GetUserByUsername failed: %v", err)
		}
		if user != nil {
			t.Errorf("expected nil user, got %+v", user)
		}
	})

	t.Run("UpdateUserProfile persists phone and twitter", func(t *testing.T) {
		user := createTestUser(t, store, "bob")
		if err := store.UpdateUserProfile(ctx, user.ID, "555-0101", "@bob"); err != nil {
			t.Fatalf("UpdateUserProfile failed: %v", err)
		}

		updated, err := store.GetUserByID(ctx, user.ID)
		if err != nil || updated == nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if updated.Phone != "555-0101" || updated.Twitter != "@bob" {
			t.Errorf("profile not updated: %+v", updated)
		}
	})
}

func TestCreateCycleAddsHostMembership(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	host := createTestUser(t, store, "host")
	cycle := &models.Cycle{Name: "Lunch Club", HostID: host.ID, FrequencyDays: 7, PaymentAmount: 20}
	if err := store.CreateCycle(ctx, cycle); err != nil {
		t.Fatalf("CreateCycle failed: %v", err)
	}
	if cycle.ID == "" {
		t.Error("Expected cycle ID to be generated")
	}

	members, err := store.ListMembers(ctx, cycle.ID)
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(members))
	}
	if members[0].UserID != host.ID {
		t.Errorf("expected host membership, got user %s", members[0].UserID)
	}
}

// setupCycleWithMembers creates a host plus n-1 extra members, all joined via
// invites.
func setupCycleWithMembers(t *testing.T, store *SQLiteStore, n int) (*models.Cycle, []*models.User) {
	t.Helper()
	ctx := context.Background()

	host := createTestUser(t, store, fmt.Sprintf("host-%d", time.Now().UnixNano()))
	cycle := &models.Cycle{Name: "Test Cycle", HostID: host.ID, FrequencyDays: 7, PaymentAmount: 10}
	if err := store.CreateCycle(ctx, cycle); err != nil {
		t.Fatalf("CreateCycle failed: %v", err)
	}

	users := []*models.User{host}
	for i := 1; i < n; i++ {
		u := createTestUser(t, store, fmt.Sprintf("member-%d-%d", i, time.Now().UnixNano()))
		invite := &models.Invite{CycleID: cycle.ID, UserID: u.ID}
		if err := store.CreateInvite(ctx, invite); err != nil {
			t.Fatalf("CreateInvite failed: %v", err)
		}
		if _, err := store.AcceptInvite(ctx, invite.ID); err != nil {
			t.Fatalf("AcceptInvite failed: %v", err)
		}
		users = append(users, u)
	}

	return cycle, users
}

func TestStartCycleFanOut(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cycle, _ := setupCycleWithMembers(t, store, 3)
	startAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := store.StartCycle(ctx, cycle.ID, startAt); err != nil {
		t.Fatalf("StartCycle failed: %v", err)
	}

	t.Run("cycle marked started", func(t *testing.T) {
		updated, err := store.GetCycle(ctx, cycle.ID)
		if err != nil || updated == nil {
			t.Fatalf("GetCycle failed: %v", err)
		}
		if !updated.HasStarted {
			t.Error("expected HasStarted")
		}
		if updated.StartDate != startAt.Unix() {
			t.Errorf("StartDate: expected %d, got %d", startAt.Unix(), updated.StartDate)
		}
	})

	t.Run("one session per member, due dates spaced by frequency", func(t *testing.T) {
		sessions, err := store.ListSessions(ctx, cycle.ID)
		if err != nil {
			t.Fatalf("ListSessions failed: %v", err)
		}
		if len(sessions) != 3 {
			t.Fatalf("expected 3 sessions, got %d", len(sessions))
		}

		week := int64(7 * 24 * 60 * 60)
		for i, session := range sessions {
			want := startAt.Unix() + week*int64(i+1)
			if session.DueDate != want {
				t.Errorf("session %d due date: expected %d, got %d", i, want, session.DueDate)
			}
			if session.Settled || session.WinnerID != "" {
				t.Errorf("session %d should start unsettled with no winner", i)
			}
		}
	})

	t.Run("members x sessions payments, all unpaid", func(t *testing.T) {
		sessions, err := store.ListSessions(ctx, cycle.ID)
		if err != nil {
			t.Fatalf("ListSessions failed: %v", err)
		}

		total := 0
		for _, session := range sessions {
			payments, err := store.ListPaymentsBySession(ctx, session.ID)
			if err != nil {
				t.Fatalf("ListPaymentsBySession failed: %v", err)
			}
			for _, p := range payments {
				if p.HasPaid {
					t.Errorf("payment %s should start unpaid", p.ID)
				}
			}
			total += len(payments)
		}
		if total != 9 {
			t.Errorf("expected 9 payments, got %d", total)
		}
	})

	t.Run("second start rejected", func(t *testing.T) {
		err := store.StartCycle(ctx, cycle.ID, startAt)
		if !errors.Is(err, storage.ErrAlreadyStarted) {
			t.Errorf("expected ErrAlreadyStarted, got %v", err)
		}
	})
}

func TestStartCycleTooFewMembers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cycle, _ := setupCycleWithMembers(t, store, 1)
	err := store.StartCycle(ctx, cycle.ID, time.Now())
	if !errors.Is(err, storage.ErrTooFewMembers) {
		t.Errorf("expected ErrTooFewMembers, got %v", err)
	}

	// Nothing from the fan-out may survive the rollback.
	sessions, err := store.ListSessions(ctx, cycle.ID)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("expected no sessions, got %d", len(sessions))
	}
	updated, _ := store.GetCycle(ctx, cycle.ID)
	if updated.HasStarted {
		t.Error("cycle must not be marked started after a failed start")
	}
}

func TestAcceptInviteIsAtomic(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cycle, users := setupCycleWithMembers(t, store, 2)

	t.Run("invite consumed on accept", func(t *testing.T) {
		invites, err := store.ListInvitesForUser(ctx, users[1].ID)
		if err != nil {
			t.Fatalf("ListInvitesForUser failed: %v", err)
		}
		if len(invites) != 0 {
			t.Errorf("expected no pending invites after accept, got %d", len(invites))
		}
	})

	t.Run("membership exists", func(t *testing.T) {
		m, err := store.GetMembership(ctx, cycle.ID, users[1].ID)
		if err != nil {
			t.Fatalf("GetMembership failed: %v", err)
		}
		if m == nil {
			t.Fatal("expected membership after accept")
		}
	})

	t.Run("duplicate invite rejected", func(t *testing.T) {
		// Invite a fresh user twice for the same cycle.
		u := createTestUser(t, store, "dupinvitee")
		first := &models.Invite{CycleID: cycle.ID, UserID: u.ID}
		if err := store.CreateInvite(ctx, first); err != nil {
			t.Fatalf("CreateInvite failed: %v", err)
		}
		second := &models.Invite{CycleID: cycle.ID, UserID: u.ID}
		if err := store.CreateInvite(ctx, second); !errors.Is(err, storage.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestMarkPaymentPaidSettlement(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cycle, _ := setupCycleWithMembers(t, store, 2)
	if err := store.StartCycle(ctx, cycle.ID, time.Now()); err != nil {
		t.Fatalf("StartCycle failed: %v", err)
	}
	sessions, err := store.ListSessions(ctx, cycle.ID)
	if err != nil || len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d (err %v)", len(sessions), err)
	}

	payments, err := store.ListPaymentsBySession(ctx, sessions[0].ID)
	if err != nil || len(payments) != 2 {
		t.Fatalf("expected 2 payments, got %d (err %v)", len(payments), err)
	}

	t.Run("session not settled while payments remain", func(t *testing.T) {
		settled, ended, err := store.MarkPaymentPaid(ctx, payments[0].ID)
		if err != nil {
			t.Fatalf("MarkPaymentPaid failed: %v", err)
		}
		if settled || ended {
			t.Errorf("unexpected settlement: settled=%v ended=%v", settled, ended)
		}
	})

	t.Run("last payment settles session", func(t *testing.T) {
		settled, ended, err := store.MarkPaymentPaid(ctx, payments[1].ID)
		if err != nil {
			t.Fatalf("MarkPaymentPaid failed: %v", err)
		}
		if !settled {
			t.Error("expected session to settle")
		}
		if ended {
			t.Error("cycle must not end while sessions remain")
		}

		session, _ := store.GetSession(ctx, sessions[0].ID)
		if !session.Settled {
			t.Error("session row not marked settled")
		}
	})

	t.Run("last session settles cycle", func(t *testing.T) {
		second, err := store.ListPaymentsBySession(ctx, sessions[1].ID)
		if err != nil {
			t.Fatalf("ListPaymentsBySession failed: %v", err)
		}
		var ended bool
		for _, p := range second {
			_, ended, err = store.MarkPaymentPaid(ctx, p.ID)
			if err != nil {
				t.Fatalf("MarkPaymentPaid failed: %v", err)
			}
		}
		if !ended {
			t.Error("expected cycle to end with the last settlement")
		}

		updated, _ := store.GetCycle(ctx, cycle.ID)
		if !updated.HasEnded {
			t.Error("cycle row not marked ended")
		}
	})
}

func TestSetSessionWinner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cycle, _ := setupCycleWithMembers(t, store, 2)
	if err := store.StartCycle(ctx, cycle.ID, time.Now()); err != nil {
		t.Fatalf("StartCycle failed: %v", err)
	}
	sessions, _ := store.ListSessions(ctx, cycle.ID)
	members, _ := store.ListMembers(ctx, cycle.ID)

	if err := store.SetSessionWinner(ctx, sessions[0].ID, members[0].ID); err != nil {
		t.Fatalf("SetSessionWinner failed: %v", err)
	}

	session, _ := store.GetSession(ctx, sessions[0].ID)
	if session.WinnerID != members[0].ID {
		t.Errorf("winner: expected %s, got %s", members[0].ID, session.WinnerID)
	}

	m, _ := store.GetMembership(ctx, cycle.ID, members[0].UserID)
	if !m.HasReceived {
		t.Error("expected winning membership to be marked received")
	}

	t.Run("recorded winner is never overwritten", func(t *testing.T) {
		err := store.SetSessionWinner(ctx, sessions[0].ID, members[1].ID)
		if !errors.Is(err, storage.ErrWinnerAssigned) {
			t.Errorf("expected ErrWinnerAssigned, got %v", err)
		}

		session, _ := store.GetSession(ctx, sessions[0].ID)
		if session.WinnerID != members[0].ID {
			t.Errorf("winner changed: expected %s, got %s", members[0].ID, session.WinnerID)
		}
		m, _ := store.GetMembership(ctx, cycle.ID, members[1].UserID)
		if m.HasReceived {
			t.Error("losing membership must not be marked received")
		}
	})
}

func TestDeleteCycleCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cycle, users := setupCycleWithMembers(t, store, 3)
	if err := store.StartCycle(ctx, cycle.ID, time.Now()); err != nil {
		t.Fatalf("StartCycle failed: %v", err)
	}

	if err := store.DeleteCycle(ctx, cycle.ID); err != nil {
		t.Fatalf("DeleteCycle failed: %v", err)
	}

	deleted, err := store.GetCycle(ctx, cycle.ID)
	if err != nil {
		t.Fatalf("GetCycle failed: %v", err)
	}
	if deleted != nil {
		t.Error("expected cycle to be gone")
	}

	members, _ := store.ListMembers(ctx, cycle.ID)
	if len(members) != 0 {
		t.Errorf("expected no memberships, got %d", len(members))
	}
	sessions, _ := store.ListSessions(ctx, cycle.ID)
	if len(sessions) != 0 {
		t.Errorf("expected no sessions, got %d", len(sessions))
	}
	for _, u := range users {
		invites, _ := store.ListInvitesForUser(ctx, u.ID)
		if len(invites) != 0 {
			t.Errorf("expected no invites for %s, got %d", u.Username, len(invites))
		}
	}
}

// Cascading deletes depend on the foreign_keys pragma, which SQLite scopes to
// a single connection. Holding one connection out of the pool forces the
// delete onto a different one.
func TestDeleteCycleCascadesOnSecondConnection(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cycle, _ := setupCycleWithMembers(t, store, 2)
	if err := store.StartCycle(ctx, cycle.ID, time.Now()); err != nil {
		t.Fatalf("StartCycle failed: %v", err)
	}
	sessions, err := store.ListSessions(ctx, cycle.ID)
	if err != nil || len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d (err %v)", len(sessions), err)
	}

	held, err := store.db.Conn(ctx)
	if err != nil {
		t.Fatalf("Conn failed: %v", err)
	}
	defer held.Close()

	if err := store.DeleteCycle(ctx, cycle.ID); err != nil {
		t.Fatalf("DeleteCycle failed: %v", err)
	}

	members, _ := store.ListMembers(ctx, cycle.ID)
	if len(members) != 0 {
		t.Errorf("expected no memberships, got %d", len(members))
	}
	remaining, _ := store.ListSessions(ctx, cycle.ID)
	if len(remaining) != 0 {
		t.Errorf("expected no sessions, got %d", len(remaining))
	}
	for _, session := range sessions {
		payments, _ := store.ListPaymentsBySession(ctx, session.ID)
		if len(payments) != 0 {
			t.Errorf("expected no payments for session %s, got %d", session.ID, len(payments))
		}
	}
}
