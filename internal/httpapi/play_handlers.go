package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/partytrivia/internal/events"
	"github.com/mcdev12/partytrivia/internal/models"
	"github.com/mcdev12/partytrivia/internal/vote"
)

// sharedQuestion is the participant-independent portion of the play poll
// response. It is cached briefly so a room full of phones polling at once
// costs a single database read per refresh.
type sharedQuestion struct {
	Question  events.QuestionView `json:"question"`
	Timestamp time.Time           `json:"timestamp"`
}

func questionCacheKey(questionID uuid.UUID) string {
	return "question:" + questionID.String()
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}

	participant, err := s.participants.Join(r.Context(), body.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":     true,
		"participant": participant,
		"token":       participant.Token,
	})
}

func (s *Server) handleCurrentQuestion(w http.ResponseWriter, r *http.Request, p *models.Participant) {
	ctx := r.Context()

	var game *models.Game
	err := s.withRetry(func() error {
		var err error
		game, err = s.games.GetActiveGame(ctx)
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondJSON(w, http.StatusOK, events.CurrentQuestionResponse{
				Waiting:    true,
				GameStatus: string(models.GameStatusWaiting),
				Timestamp:  s.clock.Now().UTC(),
			})
			return
		}
		respondError(w, err)
		return
	}

	if game.Status != models.GameStatusActive || game.CurrentQuestionID == nil {
		respondJSON(w, http.StatusOK, events.CurrentQuestionResponse{
			Waiting:    true,
			GameStatus: string(game.Status),
			Timestamp:  s.clock.Now().UTC(),
		})
		return
	}

	questionID := *game.CurrentQuestionID
	shared, err := s.sharedQuestion(ctx, questionID)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := events.CurrentQuestionResponse{
		GameStatus: string(game.Status),
		Question:   &shared.Question,
		Timestamp:  shared.Timestamp,
	}

	answer, err := s.votes.GetAnswerForParticipant(ctx, p.ID, questionID)
	if err != nil {
		respondError(w, err)
		return
	}
	if answer != nil {
		resp.Answered = true
		for _, opt := range shared.Question.Options {
			if opt.ID == answer.OptionID.String() {
				resp.SelectedAnswer = opt.Text
				break
			}
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// sharedQuestion serves the cacheable question payload, rebuilding it from
// storage on a cache miss.
func (s *Server) sharedQuestion(ctx context.Context, questionID uuid.UUID) (*sharedQuestion, error) {
	key := questionCacheKey(questionID)
	if data, ok := s.cache.Get(ctx, key); ok {
		var cached sharedQuestion
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
		s.cache.Invalidate(ctx, key)
	}

	var (
		q       *models.Question
		options []models.AnswerOption
	)
	err := s.withRetry(func() error {
		var err error
		if q, err = s.questions.GetQuestion(ctx, questionID); err != nil {
			return err
		}
		options, err = s.options.GetOptionsByQuestion(ctx, questionID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build question payload: %w", err)
	}

	built := &sharedQuestion{
		Question:  events.NewQuestionView(q, options),
		Timestamp: s.clock.Now().UTC(),
	}
	if data, err := json.Marshal(built); err == nil {
		s.cache.Set(ctx, key, data)
	}
	return built, nil
}

func (s *Server) handleTally(w http.ResponseWriter, r *http.Request, _ *models.Participant) {
	questionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, errInvalidID())
		return
	}

	tally, err := s.votes.Tally(r.Context(), questionID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, events.TallyResponse{
		QuestionID: questionID.String(),
		VoteCounts: tally.Counts,
		TotalVotes: tally.Total,
		Timestamp:  tally.Timestamp,
	})
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request, p *models.Participant) {
	questionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, errInvalidID())
		return
	}

	var body struct {
		OptionText string `json:"option_text"`
		Preview    bool   `json:"preview,omitempty"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}

	result, err := s.votes.Submit(r.Context(), vote.SubmitRequest{
		ParticipantID: p.ID,
		QuestionID:    questionID,
		OptionText:    body.OptionText,
		Preview:       body.Preview,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	// A debounced submission is not an error: report success so rapid
	// interaction never renders a failure message.
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   result.Accepted || result.Debounced,
		"correct":   result.Correct,
		"debounced": result.Debounced,
	})
}

func (s *Server) handleAddCustomAnswer(w http.ResponseWriter, r *http.Request, p *models.Participant) {
	questionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, errInvalidID())
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}

	result, err := s.options.AddCustom(r.Context(), questionID, p.ID, body.Text)
	if err != nil {
		respondError(w, err)
		return
	}
	if result.Debounced {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"debounced": true,
		})
		return
	}

	// The shared payload now misses the new option; drop it so the next poll
	// rebuilds.
	s.cache.Invalidate(r.Context(), questionCacheKey(questionID))

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":       true,
		"custom_answer": events.NewOptionView(*result.Option),
		"vote_counts":   result.Tally.Counts,
		"total_votes":   result.Tally.Total,
	})
}

// withRetry runs fn a few times with a short pause, smoothing over transient
// read failures during bursty polling. Not-found outcomes are returned
// immediately.
func (s *Server) withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < s.retries; attempt++ {
		if err = fn(); err == nil || errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if attempt < s.retries-1 {
			s.clock.Sleep(s.retryDelay)
		}
	}
	return err
}
