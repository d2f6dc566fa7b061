package parser

import (
	"encoding/json"
	"errors"
	"fmt"

	"chat-insight-backend/internal/model"
	"chat-insight-backend/internal/util"
)

var (
	ErrMalformedChat     = errors.New("malformed chat payload")
	ErrMissingHistory    = errors.New("chat payload has no history.messages")
	ErrMalformedFeedback = errors.New("malformed feedback payload")
)

type chatPayload struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Models  []string        `json:"models"`
	History *historyPayload `json:"history"`
}

type historyPayload struct {
	Messages map[string]nodePayload `json:"messages"`
}

type nodePayload struct {
	Role        string   `json:"role"`
	Model       string   `json:"model"`
	ParentID    *string  `json:"parentId"`
	ChildrenIDs []string `json:"childrenIds"`
	Timestamp   *float64 `json:"timestamp"`
	Content     *string  `json:"content"`
}

type feedbackDataPayload struct {
	Rating         *float64 `json:"rating"`
	FeedbackStatus []string `json:"feedbackStatus"`
	RatingText     string   `json:"ratingText"`
	ImproveText    string   `json:"improveText"`
	Comment        *string  `json:"comment"`
	Details        struct {
		Rating *float64 `json:"rating"`
	} `json:"details"`
}

type feedbackMetaPayload struct {
	MessageID string `json:"message_id"`
}

// The snapshot nests the chat row inside itself: snapshot.chat.chat.history.
type feedbackSnapshotPayload struct {
	Chat struct {
		Chat struct {
			History *historyPayload `json:"history"`
		} `json:"chat"`
	} `json:"chat"`
}

// DecodeChat turns a chat row into a ConversationRecord. The conversation id is
// the one embedded in the payload, falling back to the row id.
func DecodeChat(raw model.RawChat) (model.ConversationRecord, error) {
	var payload chatPayload
	if err := json.Unmarshal(raw.Chat, &payload); err != nil {
		return model.ConversationRecord{}, fmt.Errorf("%w: chat %s: %v", ErrMalformedChat, raw.ID, err)
	}
	if payload.History == nil || payload.History.Messages == nil {
		return model.ConversationRecord{}, fmt.Errorf("%w: chat %s", ErrMissingHistory, raw.ID)
	}

	id := payload.ID
	if id == "" {
		id = raw.ID
	}
	rec := model.ConversationRecord{
		ID:        id,
		UserID:    raw.UserID,
		Title:     payload.Title,
		Models:    payload.Models,
		CreatedAt: util.FromEpochInt(raw.CreatedAt),
		UpdatedAt: util.FromEpochInt(raw.UpdatedAt),
		Messages:  buildTree(payload.History.Messages),
	}
	if raw.UserName != nil {
		rec.UserName = *raw.UserName
	}
	return rec, nil
}

// DecodeFeedback decodes the three JSON columns of a feedback row. A missing
// target message id or an empty snapshot is not a decode error; the resolver
// decides what to do with those.
func DecodeFeedback(raw model.RawFeedback) (model.FeedbackEvent, error) {
	var data feedbackDataPayload
	if err := unmarshalColumn(raw.Data, &data); err != nil {
		return model.FeedbackEvent{}, fmt.Errorf("%w: feedback %s data: %v", ErrMalformedFeedback, raw.ID, err)
	}
	var meta feedbackMetaPayload
	if err := unmarshalColumn(raw.Meta, &meta); err != nil {
		return model.FeedbackEvent{}, fmt.Errorf("%w: feedback %s meta: %v", ErrMalformedFeedback, raw.ID, err)
	}
	var snapshot feedbackSnapshotPayload
	if err := unmarshalColumn(raw.Snapshot, &snapshot); err != nil {
		return model.FeedbackEvent{}, fmt.Errorf("%w: feedback %s snapshot: %v", ErrMalformedFeedback, raw.ID, err)
	}

	ev := model.FeedbackEvent{
		ID:     raw.ID,
		UserID: raw.UserID,
		Signal: model.FeedbackSignal{
			Rating:      data.Rating,
			Statuses:    data.FeedbackStatus,
			RatingText:  data.RatingText,
			ImproveText: data.ImproveText,
			Comment:     data.Comment,
		},
		RatingScore: data.Details.Rating,
		MessageID:   meta.MessageID,
		SubmittedAt: util.FromEpochInt(raw.CreatedAt),
	}
	if raw.UserName != nil {
		ev.UserName = *raw.UserName
	}
	if h := snapshot.Chat.Chat.History; h != nil {
		ev.Messages = buildTree(h.Messages)
	}
	return ev, nil
}

// unmarshalColumn treats an empty or NULL column as an empty object.
func unmarshalColumn(data []byte, v interface{}) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, v)
}

func buildTree(nodes map[string]nodePayload) model.MessageTree {
	tree := make(model.MessageTree, len(nodes))
	for id, n := range nodes {
		tree[id] = model.MessageNode{
			ID:          id,
			Role:        model.Role(n.Role),
			Model:       n.Model,
			ParentID:    n.ParentID,
			ChildrenIDs: n.ChildrenIDs,
			Timestamp:   util.FromEpochSeconds(n.Timestamp),
			Content:     n.Content,
		}
	}
	return tree
}
