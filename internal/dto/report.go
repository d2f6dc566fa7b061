package dto

import "chat-insight-backend/internal/model"

type SummaryResponse struct {
	Date    string         `json:"date"`
	Source  string         `json:"source"` // cache or file
	Summary *model.Summary `json:"summary"`
}
