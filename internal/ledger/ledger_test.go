package ledger

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/lock"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/retry"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

const testGroup = "g1"

var fastRetry = retry.Policy{MaxAttempts: 3, Backoff: time.Millisecond}

func m(s string) money.Money { return money.MustParse(s) }

func newTestStore(t *testing.T, users ...string) *sqlite.SQLiteStore {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	for _, u := range users {
		require.NoError(t, store.CreateUser(ctx, &models.User{ID: u, Name: u}))
	}
	require.NoError(t, store.CreateGroup(ctx, &models.Group{ID: testGroup, Name: "Flat", Members: users}))
	return store
}

func newTestLedger(t *testing.T, users ...string) (*Ledger, *sqlite.SQLiteStore) {
	store := newTestStore(t, users...)
	return New(store, lock.NewMemoryLocker(time.Second), WithRetryPolicy(fastRetry)), store
}

func addUser(t *testing.T, store storage.Store, id string) {
	t.Helper()
	require.NoError(t, store.CreateUser(context.Background(), &models.User{ID: id, Name: id}))
}

// edgeMap renders the group's edges as "debtor->creditor" => amount.
func edgeMap(t *testing.T, store storage.Store) map[string]string {
	t.Helper()
	edges, err := store.ListGroupEdges(context.Background(), testGroup)
	require.NoError(t, err)

	out := make(map[string]string, len(edges))
	for _, e := range edges {
		out[e.DebtorID+"->"+e.CreditorID] = e.Amount.String()
	}
	return out
}

func seedEdge(t *testing.T, store storage.Store, debtor, creditor, amount string) {
	t.Helper()
	err := store.InTx(context.Background(), func(tx storage.Tx) error {
		return tx.CreateEdge(context.Background(), &models.BalanceEdge{
			GroupID: testGroup, DebtorID: debtor, CreditorID: creditor, Amount: m(amount),
		})
	})
	require.NoError(t, err)
}

func TestApplyDebt_Netting(t *testing.T) {
	tests := []struct {
		name   string
		seed   map[string]string // "debtor->creditor" => amount
		amount string
		want   map[string]string
	}{
		{
			name:   "creates new edge",
			amount: "30.00",
			want:   map[string]string{"a->b": "30.00"},
		},
		{
			name:   "adds to direct edge",
			seed:   map[string]string{"a->b": "10.00"},
			amount: "5.50",
			want:   map[string]string{"a->b": "15.50"},
		},
		{
			name:   "larger debt flips opposite edge",
			seed:   map[string]string{"b->a": "20.00"},
			amount: "50.00",
			want:   map[string]string{"a->b": "30.00"},
		},
		{
			name:   "smaller debt reduces opposite edge",
			seed:   map[string]string{"b->a": "20.00"},
			amount: "5.00",
			want:   map[string]string{"b->a": "15.00"},
		},
		{
			name:   "equal debt cancels opposite edge",
			seed:   map[string]string{"b->a": "20.00"},
			amount: "20.00",
			want:   map[string]string{},
		},
		{
			name:   "negative amount reduces direct edge",
			seed:   map[string]string{"a->b": "20.00"},
			amount: "-5.00",
			want:   map[string]string{"a->b": "15.00"},
		},
		{
			name:   "negative amount below zero deletes direct edge",
			seed:   map[string]string{"a->b": "20.00"},
			amount: "-25.00",
			want:   map[string]string{},
		},
		{
			name:   "negative amount without edges is ignored",
			amount: "-5.00",
			want:   map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, store := newTestLedger(t, "a", "b")
			for pair, amount := range tt.seed {
				debtor, creditor, _ := strings.Cut(pair, "->")
				seedEdge(t, store, debtor, creditor, amount)
			}

			require.NoError(t, l.ApplyDebt(context.Background(), testGroup, "a", "b", m(tt.amount)))
			assert.Equal(t, tt.want, edgeMap(t, store))
		})
	}
}

func TestApplyDebt_NoOps(t *testing.T) {
	l, store := newTestLedger(t, "a", "b")
	ctx := context.Background()

	require.NoError(t, l.ApplyDebt(ctx, testGroup, "a", "b", money.Zero))
	require.NoError(t, l.ApplyDebt(ctx, testGroup, "a", "a", m("10")))
	assert.Empty(t, edgeMap(t, store))
}

func TestApplyDebt_UnknownGroup(t *testing.T) {
	l, _ := newTestLedger(t, "a", "b")

	err := l.ApplyDebt(context.Background(), "missing", "a", "b", m("1"))
	assert.ErrorIs(t, err, models.ErrGroupNotFound)
}

func TestApplyDebt_SubCentAmounts(t *testing.T) {
	tests := []struct {
		name   string
		seed   map[string]string
		amount string
		want   map[string]string
	}{
		{
			name:   "sub-cent debt is a no-op",
			amount: "0.004",
			want:   map[string]string{},
		},
		{
			name:   "rounds half up before creating",
			amount: "1.005",
			want:   map[string]string{"a->b": "1.01"},
		},
		{
			name:   "rounded amount exactly cancels opposite edge",
			seed:   map[string]string{"b->a": "10.00"},
			amount: "10.004",
			want:   map[string]string{},
		},
		{
			name:   "rounds up into an exact cancellation",
			seed:   map[string]string{"b->a": "10.00"},
			amount: "9.996",
			want:   map[string]string{},
		},
		{
			name:   "rounded negative amount clears direct edge",
			seed:   map[string]string{"a->b": "5.00"},
			amount: "-4.996",
			want:   map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, store := newTestLedger(t, "a", "b")
			for pair, amount := range tt.seed {
				debtor, creditor, _ := strings.Cut(pair, "->")
				seedEdge(t, store, debtor, creditor, amount)
			}

			require.NoError(t, l.ApplyDebt(context.Background(), testGroup, "a", "b", m(tt.amount)))
			got := edgeMap(t, store)
			assert.Equal(t, tt.want, got)
			for pair, amount := range got {
				assert.True(t, m(amount).IsPositive(), "edge %s stored as %s", pair, amount)
			}
		})
	}
}

func TestApplyDebt_NonMember(t *testing.T) {
	l, store := newTestLedger(t, "a", "b")
	addUser(t, store, "outsider")
	ctx := context.Background()

	err := l.ApplyDebt(ctx, testGroup, "outsider", "a", m("5.00"))
	assert.ErrorIs(t, err, models.ErrInvalidExpense)
	assert.ErrorIs(t, err, models.ErrNotGroupMember)

	err = l.ApplyDebt(ctx, testGroup, "a", "outsider", m("5.00"))
	assert.ErrorIs(t, err, models.ErrNotGroupMember)
	assert.Empty(t, edgeMap(t, store))
}

func TestUpdateBalancesForExpense_NonMembers(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		expense models.Expense
	}{
		{
			name: "participant outside the group",
			expense: models.Expense{
				PaidByUserID:   "u1",
				TotalAmount:    m("20.00"),
				Kind:           models.SplitEqual,
				ParticipantIDs: []string{"u1", "outsider"},
			},
		},
		{
			name: "payer outside the group",
			expense: models.Expense{
				PaidByUserID:   "outsider",
				TotalAmount:    m("20.00"),
				Kind:           models.SplitEqual,
				ParticipantIDs: []string{"u1", "u2"},
			},
		},
		{
			name: "unequal share for a non-member",
			expense: models.Expense{
				PaidByUserID: "u1",
				TotalAmount:  m("20.00"),
				Kind:         models.SplitUnequal,
				Shares: []models.UserShare{
					{UserID: "u2", Share: m("10.00")},
					{UserID: "outsider", Share: m("10.00")},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, store := newTestLedger(t, "u1", "u2")
			addUser(t, store, "outsider")

			tt.expense.GroupID = testGroup
			_, err := l.UpdateBalancesForExpense(ctx, tt.expense)
			assert.ErrorIs(t, err, models.ErrInvalidExpense)
			assert.ErrorIs(t, err, models.ErrNotGroupMember)
			assert.Empty(t, edgeMap(t, store))
		})
	}
}

func TestApplyDebt_VersionIncrements(t *testing.T) {
	l, store := newTestLedger(t, "a", "b")
	ctx := context.Background()

	require.NoError(t, l.ApplyDebt(ctx, testGroup, "a", "b", m("1")))
	require.NoError(t, l.ApplyDebt(ctx, testGroup, "a", "b", m("1")))
	require.NoError(t, l.ApplyDebt(ctx, testGroup, "a", "b", m("1")))

	edges, err := store.ListGroupEdges(ctx, testGroup)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, int64(3), edges[0].Version)
}

// Random debt sequences must leave, per pair, a single edge equal to the
// signed sum of everything applied.
func TestApplyDebt_NettingInvariant(t *testing.T) {
	users := []string{"a", "b", "c", "d"}
	l, store := newTestLedger(t, users...)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	net := make(map[[2]string]money.Money) // sorted pair => amount owed by pair[0] to pair[1]
	for i := 0; i < 200; i++ {
		debtor := users[rng.Intn(len(users))]
		creditor := users[rng.Intn(len(users))]
		amount := money.FromCents(int64(rng.Intn(10000) + 1))

		require.NoError(t, l.ApplyDebt(ctx, testGroup, debtor, creditor, amount))
		if debtor == creditor {
			continue
		}
		if debtor < creditor {
			key := [2]string{debtor, creditor}
			net[key] = net[key].Add(amount)
		} else {
			key := [2]string{creditor, debtor}
			net[key] = net[key].Sub(amount)
		}
	}

	edges, err := store.ListGroupEdges(ctx, testGroup)
	require.NoError(t, err)

	seen := make(map[[2]string]bool)
	for _, e := range edges {
		require.True(t, e.Amount.IsPositive(), "edge %s->%s is not positive: %s", e.DebtorID, e.CreditorID, e.Amount)

		key, signed := [2]string{e.DebtorID, e.CreditorID}, e.Amount
		if e.CreditorID < e.DebtorID {
			key, signed = [2]string{e.CreditorID, e.DebtorID}, e.Amount.Neg()
		}
		require.False(t, seen[key], "both directions stored for %v", key)
		seen[key] = true

		assert.True(t, net[key].Equal(signed), "pair %v: stored %s, expected %s", key, signed, net[key])
	}
	for key, amount := range net {
		if !seen[key] {
			assert.True(t, amount.IsZero(), "pair %v missing edge for %s", key, amount)
		}
	}
}

func TestUpdateBalancesForExpense(t *testing.T) {
	ctx := context.Background()

	t.Run("equal split excludes payer", func(t *testing.T) {
		l, store := newTestLedger(t, "payer", "u1", "u2")

		_, err := l.UpdateBalancesForExpense(ctx, models.Expense{
			GroupID:        testGroup,
			PaidByUserID:   "payer",
			TotalAmount:    m("90.00"),
			Kind:           models.SplitEqual,
			ParticipantIDs: []string{"payer", "u1", "u2"},
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"u1->payer": "30.00", "u2->payer": "30.00"}, edgeMap(t, store))
	})

	t.Run("unequal split nets existing balances", func(t *testing.T) {
		l, store := newTestLedger(t, "payer", "u1", "u2")
		seedEdge(t, store, "payer", "u1", "12.00")

		_, err := l.UpdateBalancesForExpense(ctx, models.Expense{
			GroupID:      testGroup,
			PaidByUserID: "payer",
			TotalAmount:  m("30.00"),
			Kind:         models.SplitUnequal,
			Shares: []models.UserShare{
				{UserID: "payer", Share: m("10.00")},
				{UserID: "u1", Share: m("15.00")},
				{UserID: "u2", Share: m("5.00")},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"u1->payer": "3.00", "u2->payer": "5.00"}, edgeMap(t, store))
	})

	t.Run("invalid split leaves balances untouched", func(t *testing.T) {
		l, store := newTestLedger(t, "payer", "u1")

		_, err := l.UpdateBalancesForExpense(ctx, models.Expense{
			GroupID:      testGroup,
			PaidByUserID: "payer",
			TotalAmount:  m("30.00"),
			Kind:         models.SplitUnequal,
			Shares:       []models.UserShare{{UserID: "u1", Share: m("29.99")}},
		})
		assert.ErrorIs(t, err, models.ErrInvalidSplit)
		assert.Empty(t, edgeMap(t, store))
	})

	t.Run("unknown participant", func(t *testing.T) {
		l, store := newTestLedger(t, "payer", "u1")

		_, err := l.UpdateBalancesForExpense(ctx, models.Expense{
			GroupID:        testGroup,
			PaidByUserID:   "payer",
			TotalAmount:    m("20.00"),
			Kind:           models.SplitEqual,
			ParticipantIDs: []string{"u1", "ghost"},
		})
		assert.ErrorIs(t, err, models.ErrUserNotFound)
		assert.Empty(t, edgeMap(t, store))
	})

	t.Run("unknown payer and group", func(t *testing.T) {
		l, _ := newTestLedger(t, "payer", "u1")
		base := models.Expense{
			GroupID:        testGroup,
			PaidByUserID:   "payer",
			TotalAmount:    m("20.00"),
			Kind:           models.SplitEqual,
			ParticipantIDs: []string{"u1"},
		}

		e := base
		e.PaidByUserID = "ghost"
		_, err := l.UpdateBalancesForExpense(ctx, e)
		assert.ErrorIs(t, err, models.ErrUserNotFound)

		e = base
		e.GroupID = "missing"
		_, err = l.UpdateBalancesForExpense(ctx, e)
		assert.ErrorIs(t, err, models.ErrGroupNotFound)

		e = base
		e.Kind = ""
		_, err = l.UpdateBalancesForExpense(ctx, e)
		assert.ErrorIs(t, err, models.ErrInvalidExpense)
	})
}

func TestReverseExpense(t *testing.T) {
	l, store := newTestLedger(t, "payer", "u1", "u2")
	ctx := context.Background()

	recorded, err := l.UpdateBalancesForExpense(ctx, models.Expense{
		GroupID:        testGroup,
		PaidByUserID:   "payer",
		TotalAmount:    m("100.00"),
		Kind:           models.SplitEqual,
		ParticipantIDs: []string{"payer", "u1", "u2"},
	})
	require.NoError(t, err)
	seedEdge(t, store, "u1", "u2", "4.00")
	assert.Equal(t, map[string]string{"u1->payer": "33.33", "u2->payer": "33.33", "u1->u2": "4.00"}, edgeMap(t, store))

	reversed, err := l.ReverseExpense(ctx, recorded.ID)
	require.NoError(t, err)
	assert.True(t, reversed.Reversed())
	assert.Equal(t, map[string]string{"u1->u2": "4.00"}, edgeMap(t, store))

	stored, err := l.GetExpense(ctx, recorded.ID)
	require.NoError(t, err)
	assert.True(t, stored.Reversed())

	_, err = l.ReverseExpense(ctx, recorded.ID)
	assert.ErrorIs(t, err, models.ErrExpenseReversed)
	assert.Equal(t, map[string]string{"u1->u2": "4.00"}, edgeMap(t, store))

	_, err = l.ReverseExpense(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrExpenseNotFound)
}

func TestReverseExpense_NetsAgainstLaterDebts(t *testing.T) {
	l, store := newTestLedger(t, "payer", "u1")
	ctx := context.Background()

	recorded, err := l.UpdateBalancesForExpense(ctx, models.Expense{
		GroupID:        testGroup,
		PaidByUserID:   "payer",
		TotalAmount:    m("20.00"),
		Kind:           models.SplitEqual,
		ParticipantIDs: []string{"payer", "u1"},
	})
	require.NoError(t, err)
	require.NoError(t, l.ApplyDebt(ctx, testGroup, "payer", "u1", m("25.00")))
	assert.Equal(t, map[string]string{"payer->u1": "15.00"}, edgeMap(t, store))

	_, err = l.ReverseExpense(ctx, recorded.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"payer->u1": "25.00"}, edgeMap(t, store))
}

func TestExpenseRecords(t *testing.T) {
	store := newTestStore(t, "payer", "u1", "u2")
	addUser(t, store, "loner")
	ctx := context.Background()

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := New(store, nil, WithRetryPolicy(fastRetry), WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))

	dinner, err := l.UpdateBalancesForExpense(ctx, models.Expense{
		GroupID:        testGroup,
		PaidByUserID:   "payer",
		TotalAmount:    m("30.00"),
		Kind:           models.SplitEqual,
		ParticipantIDs: []string{"payer", "u1", "u2"},
		Description:    "Dinner",
	})
	require.NoError(t, err)
	require.NotEmpty(t, dinner.ID)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC), dinner.CreatedAt)

	taxi, err := l.UpdateBalancesForExpense(ctx, models.Expense{
		GroupID:      testGroup,
		PaidByUserID: "u1",
		TotalAmount:  m("12.00"),
		Kind:         models.SplitUnequal,
		Shares: []models.UserShare{
			{UserID: "u1", Share: m("2.00")},
			{UserID: "u2", Share: m("10.00")},
		},
	})
	require.NoError(t, err)

	got, err := l.GetExpense(ctx, dinner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dinner", got.Description)
	assert.Equal(t, models.SplitEqual, got.Kind)
	assert.Equal(t, "30.00", got.TotalAmount.String())
	assert.Equal(t, []string{"payer", "u1", "u2"}, got.ParticipantIDs)
	require.Len(t, got.Shares, 3)
	assert.Equal(t, "10.00", got.Shares[1].Share.String())
	assert.False(t, got.Reversed())

	group, err := l.ListGroupExpenses(ctx, testGroup)
	require.NoError(t, err)
	require.Len(t, group, 2)
	assert.Equal(t, taxi.ID, group[0].ID)
	assert.Equal(t, dinner.ID, group[1].ID)

	forPayer, err := l.ListUserExpenses(ctx, "payer")
	require.NoError(t, err)
	require.Len(t, forPayer, 1)
	assert.Equal(t, dinner.ID, forPayer[0].ID)

	forU2, err := l.ListUserExpenses(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, forU2, 2)

	none, err := l.ListUserExpenses(ctx, "loner")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = l.ListUserExpenses(ctx, "ghost")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
	_, err = l.ListGroupExpenses(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrGroupNotFound)
	_, err = l.GetExpense(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrExpenseNotFound)
}

func TestUpdateBalancesForExpense_RejectedExpenseIsNotRecorded(t *testing.T) {
	l, store := newTestLedger(t, "payer", "u1")
	ctx := context.Background()

	_, err := l.UpdateBalancesForExpense(ctx, models.Expense{
		GroupID:      testGroup,
		PaidByUserID: "payer",
		TotalAmount:  m("30.00"),
		Kind:         models.SplitUnequal,
		Shares: []models.UserShare{
			{UserID: "payer", Share: m("29.996")},
			{UserID: "u1", Share: m("0.004")},
		},
	})
	assert.ErrorIs(t, err, models.ErrInvalidSplit)
	assert.Empty(t, edgeMap(t, store))

	expenses, err := l.ListGroupExpenses(ctx, testGroup)
	require.NoError(t, err)
	assert.Empty(t, expenses)
}

func TestSimplify(t *testing.T) {
	l, store := newTestLedger(t, "a", "b", "c")
	ctx := context.Background()

	seedEdge(t, store, "a", "b", "0.004") // stored as 0.00
	seedEdge(t, store, "b", "c", "0")
	seedEdge(t, store, "c", "a", "5.00")

	removed, err := l.Simplify(ctx, testGroup)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, map[string]string{"c->a": "5.00"}, edgeMap(t, store))

	_, err = l.Simplify(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrGroupNotFound)
}

// recordingLocker remembers every key it hands out.
type recordingLocker struct {
	lock.Locker
	mu   sync.Mutex
	keys []string
}

func (r *recordingLocker) Lock(ctx context.Context, key string) (lock.Unlocker, error) {
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
	return r.Locker.Lock(ctx, key)
}

func TestSimplify_LocksPairsOfFormerMembers(t *testing.T) {
	store := newTestStore(t, "a", "b")
	addUser(t, store, "gone")
	locker := &recordingLocker{Locker: lock.NewMemoryLocker(time.Second)}
	l := New(store, locker, WithRetryPolicy(fastRetry))

	// Edges left behind by a user no longer in the group.
	seedEdge(t, store, "gone", "a", "0")
	seedEdge(t, store, "b", "gone", "3.00")

	removed, err := l.Simplify(context.Background(), testGroup)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, map[string]string{"b->gone": "3.00"}, edgeMap(t, store))
	assert.Equal(t, []string{lock.PairKey(testGroup, "a", "gone")}, locker.keys)
}

func TestApplyDebt_Concurrent(t *testing.T) {
	l, store := newTestLedger(t, "a", "b")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Alternate directions so netting races with creation.
			if i%2 == 0 {
				assert.NoError(t, l.ApplyDebt(ctx, testGroup, "a", "b", m("3.00")))
			} else {
				assert.NoError(t, l.ApplyDebt(ctx, testGroup, "b", "a", m("1.00")))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, map[string]string{"a->b": "10.00"}, edgeMap(t, store))
}

// conflictStore fails the first n transactions with ErrConflict.
type conflictStore struct {
	storage.Store
	mu        sync.Mutex
	conflicts int
	calls     int
}

func (s *conflictStore) InTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	s.mu.Lock()
	s.calls++
	fail := s.calls <= s.conflicts
	s.mu.Unlock()

	if fail {
		return fmt.Errorf("simulated: %w", storage.ErrConflict)
	}
	return s.Store.InTx(ctx, fn)
}

func TestApplyDebt_RetriesConflicts(t *testing.T) {
	store := &conflictStore{Store: newTestStore(t, "a", "b"), conflicts: 2}
	l := New(store, nil, WithRetryPolicy(fastRetry))

	require.NoError(t, l.ApplyDebt(context.Background(), testGroup, "a", "b", m("4.00")))
	assert.Equal(t, 3, store.calls)
	assert.Equal(t, map[string]string{"a->b": "4.00"}, edgeMap(t, store))
}

func TestApplyDebt_GivesUpAfterRetries(t *testing.T) {
	store := &conflictStore{Store: newTestStore(t, "a", "b"), conflicts: 100}
	l := New(store, nil, WithRetryPolicy(fastRetry))

	err := l.ApplyDebt(context.Background(), testGroup, "a", "b", m("4.00"))
	assert.ErrorIs(t, err, models.ErrConcurrentUpdate)
	assert.ErrorIs(t, err, storage.ErrConflict)
	assert.Equal(t, 3, store.calls)
	assert.Empty(t, edgeMap(t, store))
}
