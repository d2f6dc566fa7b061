package pairing

import (
	"chat-insight-backend/internal/model"

	"github.com/rs/zerolog/log"
)

// Message ids are only unique inside one conversation.
type answerKey struct {
	chatID   string
	parentID string
}

// Pair attaches the latest answer to every user message. Candidates are the
// assistant messages whose parent is the query; the one with the greatest
// timestamp wins, a missing timestamp loses to any present one and equal
// timestamps fall back to the lexically greatest message id. Every user message
// appears exactly once in the output, in input order, with or without an answer.
func Pair(messages []model.FlattenedMessage) []model.QAPair {
	best := make(map[answerKey]*model.FlattenedMessage)
	queries := 0
	for i := range messages {
		m := &messages[i]
		switch m.Role {
		case model.RoleUser:
			queries++
		case model.RoleAssistant:
			if m.ParentID == nil {
				continue
			}
			key := answerKey{chatID: m.ChatID, parentID: *m.ParentID}
			if cur, ok := best[key]; !ok || newer(m, cur) {
				best[key] = m
			}
		}
	}

	pairs := make([]model.QAPair, 0, queries)
	seen := make(map[answerKey]struct{}, queries)
	answered := 0
	for _, m := range messages {
		if m.Role != model.RoleUser {
			continue
		}
		key := answerKey{chatID: m.ChatID, parentID: m.MessageID}
		if _, dup := seen[key]; dup {
			log.Warn().Str("chat_id", m.ChatID).Str("message_id", m.MessageID).Msg("Duplicate user message, keeping first")
			continue
		}
		seen[key] = struct{}{}

		pair := model.QAPair{FlattenedMessage: m}
		if ans, ok := best[key]; ok {
			id := ans.MessageID
			pair.AnswerMessageID = &id
			pair.RespondContent = ans.Content
			answered++
		}
		pairs = append(pairs, pair)
	}

	log.Info().Int("queries", len(pairs)).Int("answered", answered).Msg("Paired user queries with answers")
	return pairs
}

// newer reports whether candidate a should replace b as the selected answer.
func newer(a, b *model.FlattenedMessage) bool {
	switch {
	case a.CreatedAt == nil && b.CreatedAt == nil:
		return a.MessageID > b.MessageID
	case a.CreatedAt == nil:
		return false
	case b.CreatedAt == nil:
		return true
	case a.CreatedAt.Equal(*b.CreatedAt):
		return a.MessageID > b.MessageID
	default:
		return a.CreatedAt.After(*b.CreatedAt)
	}
}
