package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"chat-insight-backend/internal/model"
	"chat-insight-backend/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type sourceRepository struct {
	db *gorm.DB
}

func NewSourceRepository(db *gorm.DB) repository.SourceRepository {
	return &sourceRepository{db: db}
}

type chatWithUser struct {
	ChatRow
	UserName *string `gorm:"column:user_name"`
}

type feedbackWithUser struct {
	FeedbackRow
	UserName *string `gorm:"column:user_name"`
}

// FetchChats returns chats carrying metadata, joined with the owner's name.
// The metadata test runs here rather than in SQL because the column is json
// in postgres, where equality against '{}' is not defined.
func (r *sourceRepository) FetchChats(ctx context.Context) ([]model.RawChat, error) {
	var rows []chatWithUser
	err := r.db.WithContext(ctx).
		Model(&ChatRow{}).
		Select(fmt.Sprintf("%s.*, %s.name AS user_name", r.quote("chat"), r.quote("user"))).
		Joins(fmt.Sprintf("LEFT JOIN %s ON %s.id = %s.user_id", r.quote("user"), r.quote("user"), r.quote("chat"))).
		Order(r.quote("chat") + ".created_at, " + r.quote("chat") + ".id").
		Scan(&rows).Error
	if err != nil {
		log.Error().Err(err).Msg("Failed to query chat table")
		return nil, fmt.Errorf("query chats: %w", err)
	}

	out := make([]model.RawChat, 0, len(rows))
	for _, row := range rows {
		if !hasMeta(row.Meta) {
			continue
		}
		out = append(out, model.RawChat{
			ID:        row.ID,
			UserID:    row.UserID,
			UserName:  row.UserName,
			Chat:      row.Chat,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		})
	}
	log.Info().Int("rows", len(rows)).Int("with_meta", len(out)).Msg("Fetched chat records")
	return out, nil
}

func (r *sourceRepository) FetchFeedback(ctx context.Context) ([]model.RawFeedback, error) {
	var rows []feedbackWithUser
	err := r.db.WithContext(ctx).
		Model(&FeedbackRow{}).
		Select(fmt.Sprintf("%s.*, %s.name AS user_name", r.quote("feedback"), r.quote("user"))).
		Joins(fmt.Sprintf("LEFT JOIN %s ON %s.id = %s.user_id", r.quote("user"), r.quote("user"), r.quote("feedback"))).
		Order(r.quote("feedback") + ".created_at, " + r.quote("feedback") + ".id").
		Scan(&rows).Error
	if err != nil {
		log.Error().Err(err).Msg("Failed to query feedback table")
		return nil, fmt.Errorf("query feedback: %w", err)
	}

	out := make([]model.RawFeedback, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.RawFeedback{
			ID:        row.ID,
			UserID:    row.UserID,
			UserName:  row.UserName,
			Data:      row.Data,
			Meta:      row.Meta,
			Snapshot:  row.Snapshot,
			CreatedAt: row.CreatedAt,
		})
	}
	log.Info().Int("rows", len(out)).Msg("Fetched feedback records")
	return out, nil
}

// quote escapes a table name for the active dialect; "user" is reserved in postgres.
func (r *sourceRepository) quote(name string) string {
	return r.db.Statement.Quote(name)
}

// hasMeta matches the chat application's notion of a chat with metadata: a
// non-null column that is not an empty object.
func hasMeta(meta []byte) bool {
	trimmed := bytes.TrimSpace(meta)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err == nil {
		return len(obj) > 0
	}
	return !bytes.Equal(trimmed, []byte("{}"))
}
