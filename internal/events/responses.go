package events

import "time"

// CurrentQuestionResponse is the poll answer for the play surface. The shared
// portion (question, custom answers, timestamp) is cacheable across
// participants; answered and selected_answer are personalized per session.
type CurrentQuestionResponse struct {
	Waiting        bool          `json:"waiting"`
	GameStatus     string        `json:"game_status"`
	Question       *QuestionView `json:"question,omitempty"`
	Answered       bool          `json:"answered"`
	SelectedAnswer string        `json:"selected_answer,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
}

// TallyResponse is the poll answer for a question's vote distribution.
type TallyResponse struct {
	QuestionID string         `json:"question_id"`
	VoteCounts map[string]int `json:"vote_counts"`
	TotalVotes int            `json:"total_votes"`
	Timestamp  time.Time      `json:"timestamp"`
}
