package main

import (
	"database/sql"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/mcdev12/partytrivia/internal/answeroption"
	"github.com/mcdev12/partytrivia/internal/bus"
	"github.com/mcdev12/partytrivia/internal/game"
	"github.com/mcdev12/partytrivia/internal/participant"
	"github.com/mcdev12/partytrivia/internal/qcache"
	"github.com/mcdev12/partytrivia/internal/question"
	"github.com/mcdev12/partytrivia/internal/ratelimit"
	"github.com/mcdev12/partytrivia/internal/vote"
)

type Services struct {
	Participants *participant.App
	Questions    *question.App
	Options      *answeroption.App
	Votes        *vote.App
	Games        *game.App
	Cache        qcache.Cache
}

func setupServices(database *sql.DB, publisher bus.Publisher, config *Config) *Services {
	// Wire up dependency injection chain
	// Database layer → Repository layer → App layer
	clock := clockwork.NewRealClock()
	limiter := ratelimit.NewCooldownLimiter(config.debounceWindow(), clock)

	participantRepo := participant.NewRepository(database)
	participantApp := participant.NewApp(participantRepo)

	questionRepo := question.NewRepository(database)
	questionApp := question.NewApp(questionRepo)

	optionRepo := answeroption.NewRepository(database)
	voteRepo := vote.NewRepository(database)
	voteApp := vote.NewApp(voteRepo, optionRepo, questionRepo, publisher, limiter, clock)
	optionApp := answeroption.NewApp(optionRepo, questionRepo, participantRepo, voteApp, publisher, limiter, clock)

	gameRepo := game.NewRepository(database)
	gameApp := game.NewApp(gameRepo, questionRepo, optionApp, voteApp, publisher, clock)

	return &Services{
		Participants: participantApp,
		Questions:    questionApp,
		Options:      optionApp,
		Votes:        voteApp,
		Games:        gameApp,
		Cache:        setupCache(config, clock),
	}
}

// setupCache picks Redis when REDIS_ADDR is set so multiple server replicas
// share one question payload cache; otherwise an in-process cache suffices.
func setupCache(config *Config, clock clockwork.Clock) qcache.Cache {
	if addr := getEnv("REDIS_ADDR", ""); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		})
		return qcache.NewRedisCache(client, config.cacheTTL())
	}
	return qcache.NewMemoryCache(config.cacheTTL(), clock)
}
