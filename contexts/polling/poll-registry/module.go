package pollregistry

import (
	"log/slog"

	httpadapter "agora/contexts/polling/poll-registry/adapters/http"
	"agora/contexts/polling/poll-registry/adapters/memory"
	"agora/contexts/polling/poll-registry/application/commands"
	"agora/contexts/polling/poll-registry/application/queries"
	"agora/contexts/polling/poll-registry/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Polls  ports.PollRepository
	Ledger ports.VoteLedger
	Clock  ports.Clock
	Events ports.EventPublisher
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	pollUseCase := commands.PollUseCase{
		Polls:  deps.Polls,
		Events: deps.Events,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	voteUseCase := commands.VoteUseCase{
		Ledger: deps.Ledger,
		Events: deps.Events,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Polls:       pollUseCase,
			Votes:       voteUseCase,
			Queries:     queries.PollsUseCase{Polls: deps.Polls, Ledger: deps.Ledger},
			Leaderboard: queries.LeaderboardUseCase{Polls: deps.Polls},
			Logger:      deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger, events ports.EventPublisher) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Polls:  store,
		Ledger: store,
		Clock:  store,
		Events: events,
		Logger: logger,
	})
	module.Store = store
	return module
}
