package feedback

import (
	"errors"
	"fmt"

	"chat-insight-backend/internal/filter"
	"chat-insight-backend/internal/model"
	"chat-insight-backend/internal/parser"

	"github.com/rs/zerolog/log"
)

var (
	ErrUnclassifiable = errors.New("feedback carries no recognised rating")
	ErrMissingTarget  = errors.New("feedback has no target message or snapshot history")
	ErrTargetNotFound = errors.New("feedback target message not in snapshot")
)

type Stats struct {
	Events         int
	Resolved       int
	Unclassifiable int
	Denied         int
	Skipped        int
}

type Resolver interface {
	Resolve(rows []model.RawFeedback) ([]model.ResolvedFeedback, Stats)
}

type feedbackResolver struct {
	users *filter.UserFilter
}

func NewResolver(users *filter.UserFilter) Resolver {
	return &feedbackResolver{users: users}
}

// Resolve classifies every feedback row and attaches the rated answer and its
// query. Unclassifiable and denied events are dropped silently, undecodable
// ones and ones whose target cannot be found are logged and skipped.
func (r *feedbackResolver) Resolve(rows []model.RawFeedback) ([]model.ResolvedFeedback, Stats) {
	stats := Stats{Events: len(rows)}
	out := make([]model.ResolvedFeedback, 0, len(rows))

	for _, raw := range rows {
		ev, err := parser.DecodeFeedback(raw)
		if err != nil {
			log.Warn().Err(err).Str("feedback_id", raw.ID).Msg("Skipping malformed feedback record")
			stats.Skipped++
			continue
		}
		if r.users.Denied(ev.UserName) {
			stats.Denied++
			continue
		}
		resolved, err := ResolveEvent(ev)
		switch {
		case errors.Is(err, ErrUnclassifiable):
			stats.Unclassifiable++
			continue
		case err != nil:
			log.Warn().Err(err).Str("feedback_id", raw.ID).Msg("Skipping unresolvable feedback record")
			stats.Skipped++
			continue
		}
		out = append(out, resolved)
	}
	stats.Resolved = len(out)

	log.Info().
		Int("events", stats.Events).
		Int("resolved", stats.Resolved).
		Int("unclassifiable", stats.Unclassifiable).
		Int("denied", stats.Denied).
		Int("skipped", stats.Skipped).
		Msg("Resolved feedback records")
	return out, stats
}

// ResolveEvent classifies one event and walks one hop up its snapshot tree.
// The target node is the answer; a missing parent leaves the query empty.
func ResolveEvent(ev model.FeedbackEvent) (model.ResolvedFeedback, error) {
	class := Classify(ev.Signal)
	if !class.Actionable() {
		return model.ResolvedFeedback{}, ErrUnclassifiable
	}
	if ev.MessageID == "" || len(ev.Messages) == 0 {
		return model.ResolvedFeedback{}, ErrMissingTarget
	}
	answer, ok := ev.Messages[ev.MessageID]
	if !ok {
		return model.ResolvedFeedback{}, fmt.Errorf("%w: %s", ErrTargetNotFound, ev.MessageID)
	}

	resolved := model.ResolvedFeedback{
		FeedbackID:  ev.ID,
		UserID:      ev.UserID,
		UserName:    ev.UserName,
		Rating:      class.Rating,
		RatingScore: ev.RatingScore,
		Comment:     class.Comment,
		Answer:      answer.Content,
		Model:       answer.Model,
		MessageID:   ev.MessageID,
		ParentID:    answer.ParentID,
		CreatedAt:   answer.Timestamp,
	}
	if query, ok := ev.Messages.Parent(ev.MessageID); ok {
		resolved.Query = query.Content
	}
	return resolved, nil
}
