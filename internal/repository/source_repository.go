package repository

import (
	"context"

	"chat-insight-backend/internal/model"
)

// SourceRepository reads the chat application's own tables.
type SourceRepository interface {
	FetchChats(ctx context.Context) ([]model.RawChat, error)
	FetchFeedback(ctx context.Context) ([]model.RawFeedback, error)
}
