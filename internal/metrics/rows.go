package metrics

import (
	"time"
	"unicode/utf8"

	"chat-insight-backend/internal/filter"
	"chat-insight-backend/internal/model"
)

// usageRow is a QA pair that survived cleaning: it has a timestamp, an owner
// and a conversation model that is not retired.
type usageRow struct {
	chatID     string
	user       string
	model      string
	at         time.Time
	userLength int
	aiLength   int
}

type feedbackRow struct {
	user   string
	model  string
	rating model.Rating
	at     time.Time
}

func usageRows(pairs []model.QAPair, models *filter.ModelNormalizer) []usageRow {
	rows := make([]usageRow, 0, len(pairs))
	for _, p := range pairs {
		if p.CreatedAt == nil || p.UserName == "" || p.LastChatModel == "" {
			continue
		}
		m, keep := models.Normalize(p.LastChatModel)
		if !keep {
			continue
		}
		rows = append(rows, usageRow{
			chatID:     p.ChatID,
			user:       p.UserName,
			model:      m,
			at:         *p.CreatedAt,
			userLength: textLength(p.Content),
			aiLength:   textLength(p.RespondContent),
		})
	}
	return rows
}

func feedbackRows(events []model.ResolvedFeedback, models *filter.ModelNormalizer) []feedbackRow {
	rows := make([]feedbackRow, 0, len(events))
	for _, ev := range events {
		if ev.CreatedAt == nil || ev.UserName == "" || ev.Model == "" {
			continue
		}
		m, keep := models.Normalize(ev.Model)
		if !keep {
			continue
		}
		rows = append(rows, feedbackRow{
			user:   ev.UserName,
			model:  m,
			rating: ev.Rating,
			at:     *ev.CreatedAt,
		})
	}
	return rows
}

// textLength counts characters, not bytes. Missing text counts as zero.
func textLength(s *string) int {
	if s == nil {
		return 0
	}
	return utf8.RuneCountInString(*s)
}
