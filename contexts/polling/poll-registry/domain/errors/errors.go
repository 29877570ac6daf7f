package errors

import "errors"

var (
	ErrInvalidOptionCount = errors.New("poll must have between 2 and 10 options")
	ErrDuplicateQuestion  = errors.New("question has already been used")
	ErrPollNotFound       = errors.New("poll not found")
	ErrInvalidOption      = errors.New("option index out of range")
	ErrAlreadyVoted       = errors.New("identity has already voted on this poll")
	ErrNotCreator         = errors.New("only the poll creator may delete it")
)
