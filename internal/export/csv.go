package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"time"

	"chat-insight-backend/internal/model"
)

const csvTimeLayout = "2006-01-02 15:04:05"

// utf8BOM lets spreadsheet tools detect the encoding of Chinese text.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var qaPairHeader = []string{
	"chat_id", "chat_user_id", "chat_title", "chat_model", "last_chat_model",
	"chat_created_at", "chat_updated_at", "user_name", "role", "model",
	"message_id", "parentId", "last_child_id", "childrenIds", "created_at",
	"content", "answer_message_id", "respond_content",
}

var feedbackHeader = []string{
	"feedback_id", "user_id", "user_name", "good_or_bad", "rating_score",
	"rating_comment", "query", "answer", "model", "message_id", "parentId", "created_at",
}

func encodeQAPairs(pairs []model.QAPair, loc *time.Location) ([]byte, error) {
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{
			p.ChatID,
			p.ChatUserID,
			p.ChatTitle,
			jsonList(p.ChatModels),
			p.LastChatModel,
			formatTime(p.ChatCreatedAt, loc),
			formatTime(p.ChatUpdatedAt, loc),
			p.UserName,
			string(p.Role),
			p.Model,
			p.MessageID,
			optional(p.ParentID),
			optional(p.LastChildID),
			jsonList(p.ChildrenIDs),
			formatTime(p.CreatedAt, loc),
			optional(p.Content),
			optional(p.AnswerMessageID),
			optional(p.RespondContent),
		})
	}
	return encodeCSV(qaPairHeader, rows)
}

func encodeFeedback(events []model.ResolvedFeedback, loc *time.Location) ([]byte, error) {
	rows := make([][]string, 0, len(events))
	for _, fb := range events {
		score := ""
		if fb.RatingScore != nil {
			score = strconv.FormatFloat(*fb.RatingScore, 'f', -1, 64)
		}
		rows = append(rows, []string{
			fb.FeedbackID,
			fb.UserID,
			fb.UserName,
			string(fb.Rating),
			score,
			fb.Comment,
			optional(fb.Query),
			optional(fb.Answer),
			fb.Model,
			fb.MessageID,
			optional(fb.ParentID),
			formatTime(fb.CreatedAt, loc),
		})
	}
	return encodeCSV(feedbackHeader, rows)
}

func encodeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format(csvTimeLayout)
}

func inLocation(t *time.Time, loc *time.Location) *time.Time {
	if t == nil {
		return nil
	}
	local := t.In(loc)
	return &local
}

func jsonList(items []string) string {
	if items == nil {
		return ""
	}
	data, err := json.Marshal(items)
	if err != nil {
		return ""
	}
	return string(data)
}
