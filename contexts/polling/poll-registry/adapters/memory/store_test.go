package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"agora/contexts/polling/poll-registry/domain/entities"
	domainerrors "agora/contexts/polling/poll-registry/domain/errors"
)

func seedPoll(t *testing.T, store *Store, creator string, question string) entities.Poll {
	t.Helper()
	options := []string{"a", "b"}
	poll, err := store.CreatePoll(context.Background(), entities.Poll{
		Creator:    creator,
		Question:   question,
		Options:    options,
		VoteCounts: make([]uint64, len(options)),
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed poll %q: %v", question, err)
	}
	return poll
}

func TestCreateAssignsMonotonicIDs(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	first := seedPoll(t, store, "c1", "q0")
	second := seedPoll(t, store, "c1", "q1")
	if first.ID != 0 || second.ID != 1 {
		t.Fatalf("expected ids 0 and 1, got %d and %d", first.ID, second.ID)
	}

	// Deleting must not recycle ids.
	if _, err := store.DeletePoll(ctx, second.ID, "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	third := seedPoll(t, store, "c1", "q2")
	if third.ID != 2 {
		t.Fatalf("expected id 2 after delete, got %d", third.ID)
	}
}

func TestDeleteKeepsListingMembershipIntact(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	ids := make([]uint64, 0, 5)
	for i := 0; i < 5; i++ {
		poll := seedPoll(t, store, "c1", fmt.Sprintf("question %d", i))
		ids = append(ids, poll.ID)
	}

	// Remove the middle entry, then the head; survivors must all stay listed
	// exactly once. Order is unspecified after a swap-with-last removal.
	for _, victim := range []uint64{ids[2], ids[0]} {
		if _, err := store.DeletePoll(ctx, victim, "c1"); err != nil {
			t.Fatalf("delete %d: %v", victim, err)
		}
	}

	entries, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 listed polls, got %d", len(entries))
	}
	listed := map[uint64]int{}
	for _, e := range entries {
		listed[e.PollID]++
	}
	for _, want := range []uint64{ids[1], ids[3], ids[4]} {
		if listed[want] != 1 {
			t.Fatalf("poll %d listed %d times, want 1", want, listed[want])
		}
	}

	count, err := store.CountPolls(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != len(entries) {
		t.Fatalf("count %d disagrees with listing length %d", count, len(entries))
	}
}

func TestDeleteLastListedPoll(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	seedPoll(t, store, "c1", "q0")
	last := seedPoll(t, store, "c1", "q1")

	if _, err := store.DeletePoll(ctx, last.ID, "c1"); err != nil {
		t.Fatalf("delete tail entry: %v", err)
	}
	entries, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].PollID == last.ID {
		t.Fatalf("unexpected listing after tail delete: %+v", entries)
	}
}

func TestTotalVotesMatchesOptionSum(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	poll := seedPoll(t, store, "c1", "q0")
	for i := 0; i < 7; i++ {
		voter := fmt.Sprintf("voter-%d", i)
		if _, err := store.CastVote(ctx, voter, poll.ID, i%2); err != nil {
			t.Fatalf("vote %d: %v", i, err)
		}
	}

	got, err := store.GetPoll(ctx, poll.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var sum uint64
	for _, c := range got.VoteCounts {
		sum += c
	}
	if sum != got.TotalVotes {
		t.Fatalf("total votes %d != option sum %d", got.TotalVotes, sum)
	}
	if got.TotalVotes != 7 {
		t.Fatalf("expected 7 votes, got %d", got.TotalVotes)
	}
	if len(got.VoteCounts) != len(got.Options) {
		t.Fatalf("vote counts length %d != options length %d", len(got.VoteCounts), len(got.Options))
	}
}

func TestConcurrentVotesSerialize(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	poll := seedPoll(t, store, "c1", "q0")

	const voters = 64
	var wg sync.WaitGroup
	wg.Add(voters)
	for i := 0; i < voters; i++ {
		go func(i int) {
			defer wg.Done()
			voter := fmt.Sprintf("voter-%d", i)
			if _, err := store.CastVote(ctx, voter, poll.ID, i%2); err != nil {
				t.Errorf("vote by %s: %v", voter, err)
			}
		}(i)
	}
	wg.Wait()

	got, err := store.GetPoll(ctx, poll.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalVotes != voters {
		t.Fatalf("expected %d total votes, got %d", voters, got.TotalVotes)
	}
	if got.VoteCounts[0]+got.VoteCounts[1] != voters {
		t.Fatalf("option counts %v do not sum to %d", got.VoteCounts, voters)
	}
}

func TestSnapshotsAreDetached(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	poll := seedPoll(t, store, "c1", "q0")

	snapshot, err := store.GetPoll(ctx, poll.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	snapshot.VoteCounts[0] = 999
	snapshot.Options[0] = "tampered"

	fresh, err := store.GetPoll(ctx, poll.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fresh.VoteCounts[0] != 0 || fresh.Options[0] != "a" {
		t.Fatalf("store state mutated through a snapshot: %+v", fresh)
	}
}

func TestResetAllClearsEverythingButFingerprints(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	poll := seedPoll(t, store, "c1", "q0")
	seedPoll(t, store, "c1", "q1")
	if _, err := store.CastVote(ctx, "voter-1", poll.ID, 0); err != nil {
		t.Fatalf("vote: %v", err)
	}

	unlisted, err := store.ResetAll(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if unlisted != 2 {
		t.Fatalf("expected 2 polls unlisted, got %d", unlisted)
	}

	count, err := store.CountPolls(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty registry, got %d", count)
	}
	if _, err := store.GetPoll(ctx, poll.ID); !errors.Is(err, domainerrors.ErrPollNotFound) {
		t.Fatalf("expected ErrPollNotFound after reset, got %v", err)
	}

	// Counter restarts and ballots are forgotten, so the recycled id is
	// votable again by the same voter.
	if _, err := store.CreatePoll(ctx, entities.Poll{
		Creator:    "c1",
		Question:   "q0",
		Options:    []string{"a", "b"},
		VoteCounts: make([]uint64, 2),
	}); !errors.Is(err, domainerrors.ErrDuplicateQuestion) {
		t.Fatalf("expected fingerprint to survive reset, got %v", err)
	}
	fresh := seedPoll(t, store, "c1", "q2")
	if fresh.ID != 0 {
		t.Fatalf("expected counter restart at 0, got %d", fresh.ID)
	}
	if _, err := store.CastVote(ctx, "voter-1", fresh.ID, 0); err != nil {
		t.Fatalf("pre-reset ballot must not block the recycled id: %v", err)
	}
}
