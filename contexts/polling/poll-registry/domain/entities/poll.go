package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	// MinOptions and MaxOptions bound the option list accepted at creation.
	MinOptions = 2
	MaxOptions = 10
)

// Poll is the registry-owned record for a single question. Ids are assigned
// monotonically by the store; a poll is never physically removed, only
// flipped inactive and unlisted.
type Poll struct {
	ID         uint64
	Creator    string
	Question   string
	Options    []string
	VoteCounts []uint64
	TotalVotes uint64
	Active     bool
	CreatedAt  time.Time
}

// Clone returns a detached copy so callers can never alias registry state.
func (p Poll) Clone() Poll {
	out := p
	out.Options = append([]string(nil), p.Options...)
	out.VoteCounts = append([]uint64(nil), p.VoteCounts...)
	return out
}

// LeaderboardEntry is the per-poll tally the ranker sorts. Entries carry the
// listing order of the active index so ties stay stable.
type LeaderboardEntry struct {
	PollID     uint64
	Question   string
	TotalVotes uint64
}

// QuestionFingerprint hashes question text byte-exact (no trimming, no case
// folding): two questions collide only when they are identical byte for byte.
func QuestionFingerprint(question string) string {
	sum := sha256.Sum256([]byte(question))
	return hex.EncodeToString(sum[:])
}
