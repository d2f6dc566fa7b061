package model

import "time"

// Summary is the aggregate tree written to {date}_summary_stats.json.
type Summary struct {
	OverallStats   OverallStats          `json:"overall_stats"`
	ModelStats     map[string]GroupStats `json:"model_stats"`
	UserStats      map[string]GroupStats `json:"user_stats"`
	DailyStats     map[string]DailyStats `json:"daily_stats"`
	DailyUserStats []DailyUserStats      `json:"daily_user_stats"`
}

type OverallStats struct {
	TotalChats          int     `json:"total_chats"`
	TotalUserQueries    int     `json:"total_user_queries"`
	TotalFeedbacks      int     `json:"total_feedbacks"`
	FeedbackRatio       float64 `json:"feedback_ratio"`
	TotalUserTextLength int     `json:"total_user_text_length"`
	TotalAITextLength   int     `json:"total_ai_text_length"`
}

type GroupStats struct {
	UsageCount     int `json:"usage_count"`
	FeedbackCount  int `json:"feedback_count"`
	UserTextLength int `json:"user_text_length"`
	AITextLength   int `json:"ai_text_length"`
}

type DailyStats struct {
	UsageCount     int     `json:"usage_count"`
	FeedbackCount  int     `json:"feedback_count"`
	Good           int     `json:"good"`
	Bad            int     `json:"bad"`
	Improve        int     `json:"improve"`
	UserTextLength int     `json:"user_text_length"`
	AITextLength   int     `json:"ai_text_length"`
	FeedbackRatio  float64 `json:"feedback_ratio"`
	ExcellentRate  float64 `json:"excellent_rate"`
	ErrorRate      float64 `json:"error_rate"`
	ImproveRate    float64 `json:"improve_rate"`
}

// DailyUserStats is a DailyStats row for one (day, user) pair.
type DailyUserStats struct {
	CreatedAt      string  `json:"created_at"`
	UserName       string  `json:"user_name"`
	UsageCount     int     `json:"usage_count"`
	FeedbackCount  int     `json:"feedback_count"`
	Good           int     `json:"good"`
	Bad            int     `json:"bad"`
	Improve        int     `json:"improve"`
	UserTextLength int     `json:"user_text_length"`
	AITextLength   int     `json:"ai_text_length"`
	FeedbackRatio  float64 `json:"feedback_ratio"`
	ExcellentRate  float64 `json:"excellent_rate"`
	ErrorRate      float64 `json:"error_rate"`
	ImproveRate    float64 `json:"improve_rate"`
}

// ReportResult describes one pipeline run.
type ReportResult struct {
	RunID                string    `json:"run_id"`
	Date                 string    `json:"date"`
	Conversations        int       `json:"conversations"`
	SkippedConversations int       `json:"skipped_conversations"`
	Messages             int       `json:"messages"`
	QAPairs              int       `json:"qa_pairs"`
	FeedbackEvents       int       `json:"feedback_events"`
	SkippedFeedback      int       `json:"skipped_feedback"`
	Files                []string  `json:"files"`
	Summary              *Summary  `json:"summary,omitempty"`
	StartedAt            time.Time `json:"started_at"`
	FinishedAt           time.Time `json:"finished_at"`
}
