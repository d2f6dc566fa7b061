package dto

import (
	"time"

	"chat-insight-backend/internal/model"
)

type FeedbackSearchRequest struct {
	StartTime time.Time
	EndTime   time.Time
	Query     string
	Ratings   []string
	Models    []string
	Users     []string
	SortOrder string
	Page      int
	Size      int
}

type FeedbackSearchResponse struct {
	Feedback   []model.FeedbackDetail `json:"feedback"`
	TotalCount int64                  `json:"totalCount"`
	Page       int                    `json:"page"`
	Size       int                    `json:"size"`
}
