package memory

import (
	"context"
	"sync"
	"time"

	"agora/contexts/polling/poll-registry/domain/entities"
	domainerrors "agora/contexts/polling/poll-registry/domain/errors"
)

type ballotKey struct {
	voterID string
	pollID  uint64
}

// Store is the in-memory registry: one consistency domain guarded by a
// single RWMutex. Mutations serialize against each other; reads take the
// shared lock and hand out detached copies, so vote counts and totals are
// never observed torn.
type Store struct {
	mu sync.RWMutex

	polls     map[uint64]entities.Poll
	activeIDs []uint64
	positions map[uint64]int
	nextID    uint64

	// fingerprints is append-only for the process lifetime. ResetAll leaves
	// it alone on purpose: a used question stays blocked even after every
	// poll referencing it is gone.
	fingerprints map[string]struct{}

	ballots map[ballotKey]struct{}
}

func NewStore() *Store {
	return &Store{
		polls:        make(map[uint64]entities.Poll),
		positions:    make(map[uint64]int),
		fingerprints: make(map[string]struct{}),
		ballots:      make(map[ballotKey]struct{}),
	}
}

func (s *Store) CreatePoll(_ context.Context, poll entities.Poll) (entities.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fingerprint := entities.QuestionFingerprint(poll.Question)
	if _, used := s.fingerprints[fingerprint]; used {
		return entities.Poll{}, domainerrors.ErrDuplicateQuestion
	}

	poll = poll.Clone()
	poll.ID = s.nextID
	poll.Active = true
	s.nextID++

	s.polls[poll.ID] = poll
	s.positions[poll.ID] = len(s.activeIDs)
	s.activeIDs = append(s.activeIDs, poll.ID)
	s.fingerprints[fingerprint] = struct{}{}

	return poll.Clone(), nil
}

func (s *Store) GetPoll(_ context.Context, pollID uint64) (entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	poll, ok := s.polls[pollID]
	if !ok || !poll.Active {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	return poll.Clone(), nil
}

func (s *Store) CountPolls(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.activeIDs), nil
}

func (s *Store) ListActive(_ context.Context) ([]entities.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]entities.LeaderboardEntry, 0, len(s.activeIDs))
	for _, id := range s.activeIDs {
		poll := s.polls[id]
		entries = append(entries, entities.LeaderboardEntry{
			PollID:     poll.ID,
			Question:   poll.Question,
			TotalVotes: poll.TotalVotes,
		})
	}
	return entries, nil
}

func (s *Store) DeletePoll(_ context.Context, pollID uint64, requester string) (entities.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[pollID]
	if !ok || !poll.Active {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	if poll.Creator != requester {
		return entities.Poll{}, domainerrors.ErrNotCreator
	}

	poll.Active = false
	s.polls[pollID] = poll
	s.removeFromListing(pollID)

	return poll.Clone(), nil
}

func (s *Store) ResetAll(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlisted := len(s.activeIDs)
	for _, id := range s.activeIDs {
		poll := s.polls[id]
		poll.Active = false
		s.polls[id] = poll
	}
	s.activeIDs = nil
	s.positions = make(map[uint64]int)
	s.ballots = make(map[ballotKey]struct{})
	s.nextID = 0
	return unlisted, nil
}

func (s *Store) CastVote(
	_ context.Context,
	voterID string,
	pollID uint64,
	optionIndex int,
) (entities.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[pollID]
	if !ok || !poll.Active {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	if optionIndex < 0 || optionIndex >= len(poll.Options) {
		return entities.Poll{}, domainerrors.ErrInvalidOption
	}
	key := ballotKey{voterID: voterID, pollID: pollID}
	if _, voted := s.ballots[key]; voted {
		return entities.Poll{}, domainerrors.ErrAlreadyVoted
	}

	poll = poll.Clone()
	poll.VoteCounts[optionIndex]++
	poll.TotalVotes++
	s.polls[pollID] = poll
	s.ballots[key] = struct{}{}

	return poll.Clone(), nil
}

func (s *Store) HasVoted(_ context.Context, voterID string, pollID uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, voted := s.ballots[ballotKey{voterID: voterID, pollID: pollID}]
	return voted, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

// removeFromListing is the O(1) swap-with-last removal: the last listed id
// fills the gap, so listing order is not creation order after any delete.
// Caller holds the write lock.
func (s *Store) removeFromListing(pollID uint64) {
	pos, ok := s.positions[pollID]
	if !ok {
		return
	}
	last := len(s.activeIDs) - 1
	moved := s.activeIDs[last]
	s.activeIDs[pos] = moved
	s.positions[moved] = pos
	s.activeIDs = s.activeIDs[:last]
	delete(s.positions, pollID)
}
