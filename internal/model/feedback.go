package model

import "time"

type Rating string

const (
	RatingGood    Rating = "good"
	RatingBad     Rating = "bad"
	RatingImprove Rating = "improve"
	RatingUnknown Rating = "unknown"
)

// RawFeedback is one row of the feedback table joined with the submitter's name.
type RawFeedback struct {
	ID        string
	UserID    string
	UserName  *string
	Data      []byte
	Meta      []byte
	Snapshot  []byte
	CreatedAt int64
}

// FeedbackSignal carries both historical feedback schemas. Older clients send
// a signed Rating, newer ones append to Statuses. Either may be absent.
type FeedbackSignal struct {
	Rating      *float64
	Statuses    []string
	RatingText  string
	ImproveText string
	Comment     *string
}

// FeedbackEvent is a decoded feedback row, still pointing into its snapshot tree.
type FeedbackEvent struct {
	ID          string
	UserID      string
	UserName    string
	Signal      FeedbackSignal
	RatingScore *float64
	MessageID   string
	Messages    MessageTree
	SubmittedAt *time.Time
}

// ResolvedFeedback is a classified feedback event with the rated answer and its
// query attached. CreatedAt is the answer's timestamp, not the submission time.
type ResolvedFeedback struct {
	FeedbackID  string     `json:"feedback_id"`
	UserID      string     `json:"user_id"`
	UserName    string     `json:"user_name"`
	Rating      Rating     `json:"good_or_bad"`
	RatingScore *float64   `json:"rating_score"`
	Comment     string     `json:"rating_comment"`
	Query       *string    `json:"query"`
	Answer      *string    `json:"answer"`
	Model       string     `json:"model"`
	MessageID   string     `json:"message_id"`
	ParentID    *string    `json:"parentId"`
	CreatedAt   *time.Time `json:"created_at"`
}

// FeedbackDetail is the flat document shown in the feedback browser and indexed for search.
type FeedbackDetail struct {
	FeedbackID    string     `json:"feedback_id"`
	UserName      string     `json:"user_name"`
	CreatedAt     *time.Time `json:"created_at"`
	GoodOrBad     Rating     `json:"good_or_bad"`
	Model         string     `json:"model"`
	RatingScore   *float64   `json:"rating_score"`
	RatingComment string     `json:"rating_comment"`
	Query         string     `json:"query"`
	Answer        string     `json:"answer"`
	MessageID     string     `json:"message_id"`
}

func (f ResolvedFeedback) Detail() FeedbackDetail {
	return FeedbackDetail{
		FeedbackID:    f.FeedbackID,
		UserName:      f.UserName,
		CreatedAt:     f.CreatedAt,
		GoodOrBad:     f.Rating,
		Model:         f.Model,
		RatingScore:   f.RatingScore,
		RatingComment: f.Comment,
		Query:         deref(f.Query),
		Answer:        deref(f.Answer),
		MessageID:     f.MessageID,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
