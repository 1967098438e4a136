package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/mcdev12/partytrivia/internal/events"
	"github.com/mcdev12/partytrivia/internal/models"
	"github.com/mcdev12/partytrivia/internal/question"
)

type questionBody struct {
	Kind               string   `json:"kind"`
	Prompt             string   `json:"prompt"`
	ImageURL           *string  `json:"image_url"`
	Options            []string `json:"options"`
	CorrectAnswer      *string  `json:"correct_answer"`
	NoCorrectAnswer    bool     `json:"no_correct_answer"`
	AllowCustomAnswers bool     `json:"allow_custom_answers"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}

	game, err := s.games.CreateGame(r.Context(), body.Name, body.Description)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, game)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.games.ListGames(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if games == nil {
		games = []models.Game{}
	}
	respondJSON(w, http.StatusOK, games)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, errInvalidID())
		return
	}
	game, err := s.games.GetGame(r.Context(), gameID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, game)
}

func (s *Server) handleActivateGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, errInvalidID())
		return
	}
	if err := s.games.ActivateGame(r.Context(), gameID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, errInvalidID())
		return
	}
	var body questionBody
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}

	q, err := s.questions.CreateQuestion(r.Context(), question.CreateQuestionRequest{
		GameID:             gameID,
		Kind:               models.QuestionKind(body.Kind),
		Prompt:             body.Prompt,
		ImageURL:           body.ImageURL,
		Options:            body.Options,
		CorrectAnswer:      body.CorrectAnswer,
		NoCorrectAnswer:    body.NoCorrectAnswer,
		AllowCustomAnswers: body.AllowCustomAnswers,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, q)
}

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, errInvalidID())
		return
	}
	questions, err := s.questions.GetQuestionsByGame(r.Context(), gameID)
	if err != nil {
		respondError(w, err)
		return
	}
	if questions == nil {
		questions = []models.Question{}
	}
	respondJSON(w, http.StatusOK, questions)
}

func (s *Server) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, errInvalidID())
		return
	}
	var body questionBody
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}

	q, err := s.questions.UpdateQuestion(r.Context(), questionID, question.UpdateQuestionRequest{
		Kind:               models.QuestionKind(body.Kind),
		Prompt:             body.Prompt,
		ImageURL:           body.ImageURL,
		Options:            body.Options,
		CorrectAnswer:      body.CorrectAnswer,
		NoCorrectAnswer:    body.NoCorrectAnswer,
		AllowCustomAnswers: body.AllowCustomAnswers,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	s.cache.Invalidate(r.Context(), questionCacheKey(questionID))
	respondJSON(w, http.StatusOK, q)
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, errInvalidID())
		return
	}
	if err := s.questions.DeleteQuestion(r.Context(), questionID); err != nil {
		respondError(w, err)
		return
	}
	s.cache.Invalidate(r.Context(), questionCacheKey(questionID))
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleSetActiveQuestion(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, errInvalidID())
		return
	}
	questionID, err := uuid.Parse(r.PathValue("questionID"))
	if err != nil {
		respondError(w, errInvalidID())
		return
	}

	view, err := s.games.SetActiveQuestion(r.Context(), gameID, questionID)
	if err != nil {
		respondError(w, err)
		return
	}
	s.cache.Invalidate(r.Context(), questionCacheKey(questionID))
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "question": view})
}

func (s *Server) handleAdvanceQuestion(w http.ResponseWriter, r *http.Request) {
	s.stepQuestion(w, r, s.games.AdvanceQuestion)
}

func (s *Server) handlePreviousQuestion(w http.ResponseWriter, r *http.Request) {
	s.stepQuestion(w, r, s.games.PreviousQuestion)
}

func (s *Server) stepQuestion(w http.ResponseWriter, r *http.Request, step func(ctx context.Context, gameID uuid.UUID) (*events.QuestionView, error)) {
	gameID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, errInvalidID())
		return
	}
	view, err := step(r.Context(), gameID)
	if err != nil {
		respondError(w, err)
		return
	}
	if view != nil {
		if questionID, err := uuid.Parse(view.ID); err == nil {
			s.cache.Invalidate(r.Context(), questionCacheKey(questionID))
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "question": view})
}

func (s *Server) handleShowResults(w http.ResponseWriter, r *http.Request) {
	s.gameAction(w, r, s.games.ShowResults)
}

func (s *Server) handleResetVotes(w http.ResponseWriter, r *http.Request) {
	s.gameAction(w, r, s.games.ResetVotes)
}

func (s *Server) handleResetGame(w http.ResponseWriter, r *http.Request) {
	s.gameAction(w, r, s.games.ResetGame)
}

func (s *Server) gameAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, gameID uuid.UUID) error) {
	gameID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, errInvalidID())
		return
	}
	if err := action(r.Context(), gameID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
