package flattener

import (
	"sort"

	"chat-insight-backend/internal/filter"
	"chat-insight-backend/internal/model"
	"chat-insight-backend/internal/parser"

	"github.com/rs/zerolog/log"
)

type Stats struct {
	Conversations int
	Skipped       int
	Denied        int
	Messages      int
}

type Flattener interface {
	Flatten(rows []model.RawChat) ([]model.FlattenedMessage, Stats)
}

type chatFlattener struct {
	users *filter.UserFilter
}

func NewFlattener(users *filter.UserFilter) Flattener {
	return &chatFlattener{users: users}
}

// Flatten decodes every chat row and emits one record per message. Rows owned
// by denied users are dropped, malformed rows are logged and skipped.
func (f *chatFlattener) Flatten(rows []model.RawChat) ([]model.FlattenedMessage, Stats) {
	var stats Stats
	out := make([]model.FlattenedMessage, 0, len(rows)*4)

	for _, raw := range rows {
		if raw.UserName != nil && f.users.Denied(*raw.UserName) {
			stats.Denied++
			continue
		}
		rec, err := parser.DecodeChat(raw)
		if err != nil {
			log.Warn().Err(err).Str("chat_row_id", raw.ID).Msg("Skipping malformed chat record")
			stats.Skipped++
			continue
		}
		msgs := FlattenConversation(rec)
		stats.Conversations++
		stats.Messages += len(msgs)
		out = append(out, msgs...)
	}

	log.Info().
		Int("conversations", stats.Conversations).
		Int("skipped", stats.Skipped).
		Int("denied", stats.Denied).
		Int("messages", stats.Messages).
		Msg("Flattened chat records")
	return out, stats
}

// FlattenConversation emits every node of the tree, reachable or not, ordered by message id.
func FlattenConversation(rec model.ConversationRecord) []model.FlattenedMessage {
	ids := make([]string, 0, len(rec.Messages))
	for id := range rec.Messages {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	lastModel := rec.LastModel()
	out := make([]model.FlattenedMessage, 0, len(ids))
	for _, id := range ids {
		node := rec.Messages[id]
		var lastChild *string
		if n := len(node.ChildrenIDs); n > 0 {
			c := node.ChildrenIDs[n-1]
			lastChild = &c
		}
		out = append(out, model.FlattenedMessage{
			ChatID:        rec.ID,
			ChatUserID:    rec.UserID,
			ChatTitle:     rec.Title,
			ChatModels:    rec.Models,
			LastChatModel: lastModel,
			ChatCreatedAt: rec.CreatedAt,
			ChatUpdatedAt: rec.UpdatedAt,
			UserName:      rec.UserName,
			Role:          node.Role,
			Model:         node.Model,
			MessageID:     id,
			ParentID:      node.ParentID,
			LastChildID:   lastChild,
			ChildrenIDs:   node.ChildrenIDs,
			CreatedAt:     node.Timestamp,
			Content:       node.Content,
		})
	}
	return out
}
