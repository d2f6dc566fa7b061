package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-insight-backend/internal/filter"
	"chat-insight-backend/internal/model"
)

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		signal      model.FeedbackSignal
		wantRating  model.Rating
		wantComment string
	}{
		{name: "rating -1", signal: model.FeedbackSignal{Rating: f(-1), RatingText: "wrong"}, wantRating: model.RatingBad, wantComment: "wrong"},
		{name: "rating 1", signal: model.FeedbackSignal{Rating: f(1), RatingText: "nice"}, wantRating: model.RatingGood, wantComment: "nice"},
		{name: "rating 0", signal: model.FeedbackSignal{Rating: f(0)}, wantRating: model.RatingUnknown},
		{name: "status stepOn", signal: model.FeedbackSignal{Statuses: []string{"stepOn"}, RatingText: "meh"}, wantRating: model.RatingBad, wantComment: "meh"},
		{name: "status like", signal: model.FeedbackSignal{Statuses: []string{"like"}}, wantRating: model.RatingGood},
		{
			name:        "status improve uses improve text",
			signal:      model.FeedbackSignal{Statuses: []string{"improve"}, RatingText: "unused", ImproveText: "more examples"},
			wantRating:  model.RatingImprove,
			wantComment: "more examples",
		},
		{name: "latest status wins", signal: model.FeedbackSignal{Statuses: []string{"stepOn", "like"}}, wantRating: model.RatingGood},
		{name: "unknown status with zero rating", signal: model.FeedbackSignal{Statuses: []string{"other"}, Rating: f(0)}, wantRating: model.RatingUnknown},
		{name: "empty", signal: model.FeedbackSignal{}, wantRating: model.RatingUnknown},
		{
			name:        "explicit comment overrides",
			signal:      model.FeedbackSignal{Rating: f(1), RatingText: "nice", Comment: s("typed comment")},
			wantRating:  model.RatingGood,
			wantComment: "typed comment",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.signal)
			assert.Equal(t, tt.wantRating, got.Rating)
			assert.Equal(t, tt.wantComment, got.Comment)
			assert.Equal(t, tt.wantRating != model.RatingUnknown, got.Actionable())
		})
	}
}

const snapshot = `{"chat":{"chat":{"history":{"messages":{
	"q1":{"role":"user","childrenIds":["a1"],"timestamp":1714557600,"content":"what is go"},
	"a1":{"role":"assistant","parentId":"q1","model":"聆境 1.1","timestamp":1714557610,"content":"a language"},
	"a2":{"role":"assistant","parentId":"missing","model":"gpt-4","timestamp":1714557620,"content":"orphan answer"},
	"a3":{"role":"assistant","model":"gpt-4","timestamp":1714557630,"content":"root answer"}}}}}}`

func row(id, user, data, messageID string) model.RawFeedback {
	return model.RawFeedback{
		ID:        id,
		UserID:    "uid-" + user,
		UserName:  s(user),
		Data:      []byte(data),
		Meta:      []byte(`{"message_id":"` + messageID + `"}`),
		Snapshot:  []byte(snapshot),
		CreatedAt: 1714560000,
	}
}

func TestResolve(t *testing.T) {
	rows := []model.RawFeedback{
		row("f1", "alice", `{"rating":-1,"ratingText":"wrong","details":{"rating":2}}`, "a1"),
		row("f2", "alice", `{"feedbackStatus":["improve"],"improveText":"shorter"}`, "a2"),
		row("f3", "bob", `{"feedbackStatus":["other"],"rating":0}`, "a1"),
		row("f4", "cz", `{"rating":1}`, "a1"),
		row("f5", "bob", `{"rating":1}`, "nope"),
		row("f6", "bob", `{"rating":1}`, ""),
		{ID: "f7", UserName: s("bob"), Data: []byte(`{`)},
		row("f8", "carol", `{"feedbackStatus":["like"]}`, "a3"),
	}

	out, stats := NewResolver(filter.NewUserFilter([]string{"dali", "cz", " cz"})).Resolve(rows)

	assert.Equal(t, Stats{Events: 8, Resolved: 3, Unclassifiable: 1, Denied: 1, Skipped: 3}, stats)
	require.Len(t, out, 3)

	bad := out[0]
	assert.Equal(t, "f1", bad.FeedbackID)
	assert.Equal(t, model.RatingBad, bad.Rating)
	assert.Equal(t, "wrong", bad.Comment)
	assert.Equal(t, "what is go", *bad.Query)
	assert.Equal(t, "a language", *bad.Answer)
	assert.Equal(t, "聆境 1.1", bad.Model)
	assert.Equal(t, 2.0, *bad.RatingScore)
	assert.Equal(t, int64(1714557610), bad.CreatedAt.Unix(), "timestamp comes from the answer, not the submission")

	improve := out[1]
	assert.Equal(t, model.RatingImprove, improve.Rating)
	assert.Equal(t, "shorter", improve.Comment)
	assert.Nil(t, improve.Query, "parent not in tree")
	assert.Equal(t, "orphan answer", *improve.Answer)
	assert.Nil(t, improve.RatingScore)

	root := out[2]
	assert.Equal(t, model.RatingGood, root.Rating)
	assert.Nil(t, root.Query, "no parent id")

	for _, fb := range out {
		assert.NotEqual(t, "cz", fb.UserName)
	}
}

func TestResolveEvent_Errors(t *testing.T) {
	tree := model.MessageTree{"a": {ID: "a", Role: model.RoleAssistant}}

	_, err := ResolveEvent(model.FeedbackEvent{Signal: model.FeedbackSignal{Statuses: []string{"other"}}, MessageID: "a", Messages: tree})
	assert.ErrorIs(t, err, ErrUnclassifiable)

	_, err = ResolveEvent(model.FeedbackEvent{Signal: model.FeedbackSignal{Rating: f(1)}, MessageID: "a"})
	assert.ErrorIs(t, err, ErrMissingTarget)

	_, err = ResolveEvent(model.FeedbackEvent{Signal: model.FeedbackSignal{Rating: f(1)}, MessageID: "b", Messages: tree})
	assert.ErrorIs(t, err, ErrTargetNotFound)
}
