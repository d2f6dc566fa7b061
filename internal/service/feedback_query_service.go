package service

import (
	"context"
	"errors"
	"strings"

	"chat-insight-backend/internal/dto"
	"chat-insight-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

var ErrSearchUnavailable = errors.New("feedback search is not enabled")

type FeedbackQueryService interface {
	SearchFeedback(ctx context.Context, req dto.FeedbackSearchRequest) (*dto.FeedbackSearchResponse, error)
}

type feedbackQueryService struct {
	feedbackRepo repository.FeedbackRepository
}

func NewFeedbackQueryService(feedbackRepo repository.FeedbackRepository) FeedbackQueryService {
	return &feedbackQueryService{
		feedbackRepo: feedbackRepo,
	}
}

func (s *feedbackQueryService) SearchFeedback(ctx context.Context, req dto.FeedbackSearchRequest) (*dto.FeedbackSearchResponse, error) {
	if err := validateRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if s.feedbackRepo == nil {
		return nil, ErrSearchUnavailable
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Size <= 0 || req.Size > 1000 {
		req.Size = 50
	}
	req.SortOrder = strings.ToLower(req.SortOrder)
	if req.SortOrder != "asc" && req.SortOrder != "desc" {
		req.SortOrder = "desc"
	}
	for i, rating := range req.Ratings {
		req.Ratings[i] = strings.ToLower(rating)
	}

	log.Info().
		Time("start_time", req.StartTime).
		Time("end_time", req.EndTime).
		Str("query", req.Query).
		Strs("ratings", req.Ratings).
		Strs("models", req.Models).
		Strs("users", req.Users).
		Int("page", req.Page).
		Int("size", req.Size).
		Msg("Searching feedback")

	return s.feedbackRepo.Search(ctx, req)
}
