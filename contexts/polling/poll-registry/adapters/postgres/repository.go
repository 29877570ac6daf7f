package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/polling/poll-registry/domain/entities"
	domainerrors "agora/contexts/polling/poll-registry/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository implements the registry ports on gorm. Every mutating port
// call runs in one transaction with the poll row (or the counter row)
// locked, so the same atomicity the memory store gets from its mutex comes
// from the database here.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&pollModel{}, &questionModel{}, &ballotModel{}, &counterModel{})
}

func (r *Repository) CreatePoll(ctx context.Context, poll entities.Poll) (entities.Poll, error) {
	var created pollModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		question := questionModel{
			Fingerprint: entities.QuestionFingerprint(poll.Question),
			Question:    poll.Question,
			CreatedAt:   poll.CreatedAt,
		}
		if err := tx.Create(&question).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrDuplicateQuestion
			}
			return err
		}

		id, err := nextPollID(tx)
		if err != nil {
			return err
		}

		var listed int64
		if err := tx.Model(&pollModel{}).Where("active = ?", true).Count(&listed).Error; err != nil {
			return err
		}

		poll.ID = id
		poll.Active = true
		created = pollModelFromEntity(poll, int(listed))
		// Ids recycle after a reset while deactivated rows keep their keys,
		// so a fresh poll may land on an old id. Overwrite the stale row.
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&created).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrDuplicateQuestion) {
			return entities.Poll{}, err
		}
		return entities.Poll{}, r.logError("poll_repo_create_failed", err, "creator", poll.Creator)
	}
	return created.toEntity(), nil
}

func (r *Repository) GetPoll(ctx context.Context, pollID uint64) (entities.Poll, error) {
	var row pollModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND active = ?", pollID, true).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Poll{}, domainerrors.ErrPollNotFound
		}
		return entities.Poll{}, r.logError("poll_repo_get_failed", err, "poll_id", pollID)
	}
	return row.toEntity(), nil
}

func (r *Repository) CountPolls(ctx context.Context) (int, error) {
	var listed int64
	err := r.db.WithContext(ctx).
		Model(&pollModel{}).
		Where("active = ?", true).
		Count(&listed).
		Error
	if err != nil {
		return 0, r.logError("poll_repo_count_failed", err)
	}
	return int(listed), nil
}

func (r *Repository) ListActive(ctx context.Context) ([]entities.LeaderboardEntry, error) {
	var rows []pollModel
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("position ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("poll_repo_list_active_failed", err)
	}
	entries := make([]entities.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, entities.LeaderboardEntry{
			PollID:     row.ID,
			Question:   row.Question,
			TotalVotes: row.TotalVotes,
		})
	}
	return entries, nil
}

func (r *Repository) DeletePoll(ctx context.Context, pollID uint64, requester string) (entities.Poll, error) {
	var deleted pollModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row pollModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND active = ?", pollID, true).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrPollNotFound
			}
			return err
		}
		if row.Creator != requester {
			return domainerrors.ErrNotCreator
		}

		var last pollModel
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("active = ?", true).
			Order("position DESC").
			First(&last).
			Error
		if err != nil {
			return err
		}
		if last.ID != row.ID {
			if err := tx.Model(&pollModel{}).
				Where("id = ?", last.ID).
				Update("position", row.Position).
				Error; err != nil {
				return err
			}
		}

		deleted = row
		deleted.Active = false
		deleted.Position = unlistedPosition
		return tx.Model(&pollModel{}).
			Where("id = ?", row.ID).
			Updates(map[string]any{"active": false, "position": unlistedPosition}).
			Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrPollNotFound) || errors.Is(err, domainerrors.ErrNotCreator) {
			return entities.Poll{}, err
		}
		return entities.Poll{}, r.logError("poll_repo_delete_failed", err, "poll_id", pollID)
	}
	return deleted.toEntity(), nil
}

func (r *Repository) ResetAll(ctx context.Context) (int, error) {
	var unlisted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&pollModel{}).Where("active = ?", true).Count(&unlisted).Error; err != nil {
			return err
		}
		if err := tx.Model(&pollModel{}).
			Where("active = ?", true).
			Updates(map[string]any{"active": false, "position": unlistedPosition}).
			Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&ballotModel{}).Error; err != nil {
			return err
		}
		// The poll_questions table is deliberately untouched: used questions
		// stay blocked across resets.
		return tx.Model(&counterModel{}).
			Where("name = ?", idCounterName).
			Update("next_id", 0).
			Error
	})
	if err != nil {
		return 0, r.logError("poll_repo_reset_failed", err)
	}
	return int(unlisted), nil
}

func (r *Repository) CastVote(
	ctx context.Context,
	voterID string,
	pollID uint64,
	optionIndex int,
) (entities.Poll, error) {
	var updated pollModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row pollModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND active = ?", pollID, true).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrPollNotFound
			}
			return err
		}
		if optionIndex < 0 || optionIndex >= len(row.Options) {
			return domainerrors.ErrInvalidOption
		}

		ballot := ballotModel{
			VoterID:   voterID,
			PollID:    pollID,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Create(&ballot).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrAlreadyVoted
			}
			return err
		}

		row.VoteCounts[optionIndex]++
		row.TotalVotes++
		updated = row
		return tx.Model(&pollModel{}).
			Where("id = ?", pollID).
			Updates(map[string]any{
				"vote_counts": row.VoteCounts,
				"total_votes": row.TotalVotes,
			}).
			Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrPollNotFound) ||
			errors.Is(err, domainerrors.ErrInvalidOption) ||
			errors.Is(err, domainerrors.ErrAlreadyVoted) {
			return entities.Poll{}, err
		}
		return entities.Poll{}, r.logError("poll_repo_cast_vote_failed", err,
			"poll_id", pollID,
			"option_index", optionIndex,
		)
	}
	return updated.toEntity(), nil
}

func (r *Repository) HasVoted(ctx context.Context, voterID string, pollID uint64) (bool, error) {
	var found int64
	err := r.db.WithContext(ctx).
		Model(&ballotModel{}).
		Where("voter_id = ? AND poll_id = ?", voterID, pollID).
		Count(&found).
		Error
	if err != nil {
		return false, r.logError("poll_repo_has_voted_failed", err, "poll_id", pollID)
	}
	return found > 0, nil
}

// nextPollID reads and bumps the monotonic counter under a row lock. The
// counter counts creations only; deletions never release ids.
func nextPollID(tx *gorm.DB) (uint64, error) {
	counter := counterModel{Name: idCounterName}
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", idCounterName).
		FirstOrCreate(&counter).
		Error
	if err != nil {
		return 0, err
	}
	id := counter.NextID
	err = tx.Model(&counterModel{}).
		Where("name = ?", idCounterName).
		Update("next_id", id+1).
		Error
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "polling/poll-registry",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("poll repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite reports constraint failures as plain strings.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// SystemClock satisfies ports.Clock for production wiring.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
