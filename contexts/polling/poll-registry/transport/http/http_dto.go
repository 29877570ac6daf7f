package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type CreatePollResponse struct {
	PollID uint64 `json:"poll_id"`
}

type PollResponse struct {
	PollID     uint64    `json:"poll_id"`
	Creator    string    `json:"creator"`
	Question   string    `json:"question"`
	Options    []string  `json:"options"`
	VoteCounts []uint64  `json:"vote_counts"`
	TotalVotes uint64    `json:"total_votes"`
	CreatedAt  time.Time `json:"created_at"`
}

type PollCountResponse struct {
	Count int `json:"count"`
}

type CastVoteRequest struct {
	OptionIndex int `json:"option_index"`
}

type CastVoteResponse struct {
	PollID     uint64   `json:"poll_id"`
	VoteCounts []uint64 `json:"vote_counts"`
	TotalVotes uint64   `json:"total_votes"`
}

type BallotResponse struct {
	PollID   uint64 `json:"poll_id"`
	HasVoted bool   `json:"has_voted"`
}

type LeaderboardItem struct {
	Rank       int    `json:"rank"`
	PollID     uint64 `json:"poll_id"`
	Question   string `json:"question"`
	TotalVotes uint64 `json:"total_votes"`
}

type LeaderboardResponse struct {
	Items []LeaderboardItem `json:"items"`
}
