package repository

import (
	"context"

	"chat-insight-backend/internal/dto"
)

type FeedbackRepository interface {
	Search(ctx context.Context, req dto.FeedbackSearchRequest) (*dto.FeedbackSearchResponse, error)
}
