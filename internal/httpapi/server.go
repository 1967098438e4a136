package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/partytrivia/internal/answeroption"
	"github.com/mcdev12/partytrivia/internal/events"
	"github.com/mcdev12/partytrivia/internal/models"
	"github.com/mcdev12/partytrivia/internal/qcache"
	"github.com/mcdev12/partytrivia/internal/question"
	"github.com/mcdev12/partytrivia/internal/vote"
)

// ParticipantApp defines what the HTTP layer needs for guest sessions.
type ParticipantApp interface {
	Join(ctx context.Context, displayName string) (*models.Participant, error)
	Authenticate(ctx context.Context, token string) (*models.Participant, error)
}

// GameApp defines what the HTTP layer needs for game control and reads.
type GameApp interface {
	CreateGame(ctx context.Context, name string, description *string) (*models.Game, error)
	GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error)
	GetActiveGame(ctx context.Context) (*models.Game, error)
	ListGames(ctx context.Context) ([]models.Game, error)
	ActivateGame(ctx context.Context, id uuid.UUID) error
	SetActiveQuestion(ctx context.Context, gameID, questionID uuid.UUID) (*events.QuestionView, error)
	AdvanceQuestion(ctx context.Context, gameID uuid.UUID) (*events.QuestionView, error)
	PreviousQuestion(ctx context.Context, gameID uuid.UUID) (*events.QuestionView, error)
	ShowResults(ctx context.Context, gameID uuid.UUID) error
	ResetVotes(ctx context.Context, gameID uuid.UUID) error
	ResetGame(ctx context.Context, gameID uuid.UUID) error
}

// QuestionApp defines what the HTTP layer needs for question management.
type QuestionApp interface {
	CreateQuestion(ctx context.Context, req question.CreateQuestionRequest) (*models.Question, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error)
	GetQuestionsByGame(ctx context.Context, gameID uuid.UUID) ([]models.Question, error)
	UpdateQuestion(ctx context.Context, id uuid.UUID, req question.UpdateQuestionRequest) (*models.Question, error)
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
}

// VoteApp defines what the HTTP layer needs for vote reads and writes.
type VoteApp interface {
	Submit(ctx context.Context, req vote.SubmitRequest) (models.SubmitResult, error)
	Tally(ctx context.Context, questionID uuid.UUID) (models.VoteTally, error)
	GetAnswerForParticipant(ctx context.Context, participantID, questionID uuid.UUID) (*models.Answer, error)
}

// OptionApp defines what the HTTP layer needs for answer options.
type OptionApp interface {
	AddCustom(ctx context.Context, questionID, participantID uuid.UUID, text string) (answeroption.AddCustomResult, error)
	GetOptionsByQuestion(ctx context.Context, questionID uuid.UUID) ([]models.AnswerOption, error)
}

// Server is the HTTP transport for both the play and host surfaces.
type Server struct {
	participants ParticipantApp
	games        GameApp
	questions    QuestionApp
	votes        VoteApp
	options      OptionApp
	cache        qcache.Cache
	clock        clockwork.Clock

	hostKey    string
	retries    int
	retryDelay time.Duration
}

// NewServer creates the HTTP transport. hostKey guards the /api/host surface.
func NewServer(participants ParticipantApp, games GameApp, questions QuestionApp, votes VoteApp, options OptionApp, cache qcache.Cache, clock clockwork.Clock, hostKey string) *Server {
	return &Server{
		participants: participants,
		games:        games,
		questions:    questions,
		votes:        votes,
		options:      options,
		cache:        cache,
		clock:        clock,
		hostKey:      hostKey,
		retries:      3,
		retryDelay:   150 * time.Millisecond,
	}
}

// Routes registers all API routes on the given mux.
func (s *Server) Routes(mux *http.ServeMux) {
	// Play surface
	mux.HandleFunc("POST /api/join", s.handleJoin)
	mux.HandleFunc("GET /api/play/question", s.withParticipant(s.handleCurrentQuestion))
	mux.HandleFunc("GET /api/questions/{id}/votes", s.withParticipant(s.handleTally))
	mux.HandleFunc("POST /api/questions/{id}/answer", s.withParticipant(s.handleSubmitAnswer))
	mux.HandleFunc("POST /api/questions/{id}/custom-answer", s.withParticipant(s.handleAddCustomAnswer))

	// Host surface
	mux.HandleFunc("POST /api/host/games", s.withHostKey(s.handleCreateGame))
	mux.HandleFunc("GET /api/host/games", s.withHostKey(s.handleListGames))
	mux.HandleFunc("GET /api/host/games/{id}", s.withHostKey(s.handleGetGame))
	mux.HandleFunc("POST /api/host/games/{id}/activate", s.withHostKey(s.handleActivateGame))
	mux.HandleFunc("POST /api/host/games/{id}/questions", s.withHostKey(s.handleCreateQuestion))
	mux.HandleFunc("GET /api/host/games/{id}/questions", s.withHostKey(s.handleListQuestions))
	mux.HandleFunc("PUT /api/host/questions/{id}", s.withHostKey(s.handleUpdateQuestion))
	mux.HandleFunc("DELETE /api/host/questions/{id}", s.withHostKey(s.handleDeleteQuestion))
	mux.HandleFunc("POST /api/host/games/{id}/questions/{questionID}/activate", s.withHostKey(s.handleSetActiveQuestion))
	mux.HandleFunc("POST /api/host/games/{id}/next", s.withHostKey(s.handleAdvanceQuestion))
	mux.HandleFunc("POST /api/host/games/{id}/previous", s.withHostKey(s.handlePreviousQuestion))
	mux.HandleFunc("POST /api/host/games/{id}/results", s.withHostKey(s.handleShowResults))
	mux.HandleFunc("POST /api/host/games/{id}/reset-votes", s.withHostKey(s.handleResetVotes))
	mux.HandleFunc("POST /api/host/games/{id}/reset", s.withHostKey(s.handleResetGame))
}
