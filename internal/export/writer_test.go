package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-insight-backend/internal/model"
)

var shanghai = time.FixedZone("CST", 8*3600)

func sp(s string) *string { return &s }

func sampleReport(date string) Report {
	at := time.Date(2024, 5, 1, 1, 30, 0, 0, time.UTC)
	score := 4.0
	return Report{
		Date: date,
		Pairs: []model.QAPair{{
			FlattenedMessage: model.FlattenedMessage{
				ChatID:        "c1",
				ChatModels:    []string{"gpt-4"},
				LastChatModel: "gpt-4",
				UserName:      "张三",
				Role:          model.RoleUser,
				MessageID:     "q1",
				CreatedAt:     &at,
				Content:       sp("多行\n问题, with comma"),
			},
			AnswerMessageID: sp("a1"),
			RespondContent:  sp("answer"),
		}},
		Feedback: []model.ResolvedFeedback{
			{FeedbackID: "f1", UserName: "张三", Rating: model.RatingGood, RatingScore: &score, Answer: sp("answer"), MessageID: "a1", CreatedAt: &at},
			{FeedbackID: "f2", UserName: "李四", Rating: model.RatingBad, MessageID: "a2"},
		},
		Summary: model.Summary{
			OverallStats: model.OverallStats{TotalChats: 1, TotalUserQueries: 1, TotalFeedbacks: 2, FeedbackRatio: 2},
			ModelStats:   map[string]model.GroupStats{"gpt-4": {UsageCount: 1}},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, utf8BOM))
	records, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(filepath.Join(dir, "df_data"), shanghai)

	files, err := w.WriteReport(sampleReport("2024-05-02"))
	require.NoError(t, err)
	require.Len(t, files, 4)

	chat := readCSV(t, filepath.Join(dir, "df_data", "2024-05-02_chat_data.csv"))
	require.Len(t, chat, 2)
	assert.Equal(t, qaPairHeader, chat[0])
	assert.Equal(t, "多行\n问题, with comma", chat[1][15])
	assert.Equal(t, `["gpt-4"]`, chat[1][3])
	assert.Equal(t, "2024-05-01 09:30:00", chat[1][14])
	assert.Equal(t, "a1", chat[1][16])

	fbRows := readCSV(t, filepath.Join(dir, "df_data", "2024-05-02_feedback_data.csv"))
	require.Len(t, fbRows, 3)
	assert.Equal(t, "4", fbRows[1][4])
	assert.Equal(t, "", fbRows[2][4])
	assert.Equal(t, "2024-05-01 09:30:00", fbRows[1][11])

	raw, err := os.ReadFile(filepath.Join(dir, "df_data", "2024-05-02_feedback_details.json"))
	require.NoError(t, err)
	var details []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &details))
	require.Len(t, details, 2)
	assert.Equal(t, "f1", details[0]["feedback_id"])
	assert.Equal(t, "2024-05-01T09:30:00+08:00", details[0]["created_at"])
	assert.Equal(t, 4.0, details[0]["rating_score"])
	assert.Nil(t, details[1]["rating_score"])
	assert.Equal(t, "", details[1]["query"])
	assert.Nil(t, details[1]["created_at"])

	_, err = os.Stat(filepath.Join(dir, "df_data", "2024-05-02_summary_stats.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteReport_NoFeedbackSkipsDetails(t *testing.T) {
	w := NewWriter(t.TempDir(), shanghai)
	r := sampleReport("2024-05-02")
	r.Feedback = nil

	files, err := w.WriteReport(r)
	require.NoError(t, err)
	assert.Len(t, files, 3)
	for _, f := range files {
		assert.NotContains(t, f, feedbackDetailsSuffix)
	}
}

func TestWriteReport_RerunWithoutFeedbackRemovesDetails(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, shanghai)
	details := filepath.Join(dir, "2024-05-02"+feedbackDetailsSuffix)

	_, err := w.WriteReport(sampleReport("2024-05-02"))
	require.NoError(t, err)
	require.FileExists(t, details)

	r := sampleReport("2024-05-02")
	r.Feedback = nil
	_, err = w.WriteReport(r)
	require.NoError(t, err)
	assert.NoFileExists(t, details)
	assert.FileExists(t, filepath.Join(dir, "2024-05-02"+summarySuffix))
}

func TestWriteReport_RerunIsByteIdentical(t *testing.T) {
	w := NewWriter(t.TempDir(), shanghai)

	files, err := w.WriteReport(sampleReport("2024-05-02"))
	require.NoError(t, err)
	first := make(map[string][]byte)
	for _, f := range files {
		data, err := os.ReadFile(f)
		require.NoError(t, err)
		first[f] = data
	}

	_, err = w.WriteReport(sampleReport("2024-05-02"))
	require.NoError(t, err)
	for f, want := range first {
		got, err := os.ReadFile(f)
		require.NoError(t, err)
		assert.Equal(t, want, got, f)
	}
}

func TestLatestSummary(t *testing.T) {
	w := NewWriter(t.TempDir(), shanghai)

	_, _, err := w.LatestSummary()
	assert.ErrorIs(t, err, ErrNoReport)

	older := sampleReport("2024-04-30")
	older.Summary.OverallStats.TotalChats = 7
	_, err = w.WriteReport(older)
	require.NoError(t, err)
	_, err = w.WriteReport(sampleReport("2024-05-02"))
	require.NoError(t, err)

	summary, date, err := w.LatestSummary()
	require.NoError(t, err)
	assert.Equal(t, "2024-05-02", date)
	assert.Equal(t, 1, summary.OverallStats.TotalChats)
	assert.Equal(t, 1, summary.ModelStats["gpt-4"].UsageCount)
}

func TestWriteReport_UnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := NewWriter(filepath.Join(blocker, "out"), shanghai).WriteReport(sampleReport("2024-05-02"))
	assert.Error(t, err)
}
