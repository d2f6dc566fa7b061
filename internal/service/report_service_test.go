package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chat-insight-backend/config"
	"chat-insight-backend/internal/cache"
	"chat-insight-backend/internal/database"
	"chat-insight-backend/internal/export"
	"chat-insight-backend/internal/feedback"
	"chat-insight-backend/internal/filter"
	"chat-insight-backend/internal/flattener"
	"chat-insight-backend/internal/metrics"
	"chat-insight-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	chats       []model.RawChat
	feedback    []model.RawFeedback
	chatErr     error
	feedbackErr error
}

func (f *fakeSource) FetchChats(context.Context) ([]model.RawChat, error) {
	return f.chats, f.chatErr
}

func (f *fakeSource) FetchFeedback(context.Context) ([]model.RawFeedback, error) {
	return f.feedback, f.feedbackErr
}

type fakeMetricStore struct {
	events []model.MetricEvent
	err    error
}

func (f *fakeMetricStore) ReplaceMetricEvents(_ context.Context, events []model.MetricEvent) error {
	f.events = events
	return f.err
}

func (f *fakeMetricStore) Close() {}

type fakeFeedbackStore struct {
	indexed []model.FeedbackDetail
	err     error
}

func (f *fakeFeedbackStore) IndexFeedback(_ context.Context, details []model.FeedbackDetail) error {
	f.indexed = append(f.indexed, details...)
	return f.err
}

func (f *fakeFeedbackStore) Close(context.Context) error { return nil }

type fakeProducer struct {
	produced []model.FeedbackDetail
}

func (f *fakeProducer) Produce(_ context.Context, details []model.FeedbackDetail) error {
	f.produced = append(f.produced, details...)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

type memoryCache struct {
	date    string
	summary *model.Summary
}

func (c *memoryCache) Get(context.Context) (*model.Summary, string, error) {
	if c.summary == nil {
		return nil, "", cache.ErrCacheMiss
	}
	return c.summary, c.date, nil
}

func (c *memoryCache) Set(_ context.Context, date string, summary model.Summary) error {
	c.date, c.summary = date, &summary
	return nil
}

func (c *memoryCache) Close() error { return nil }

func name(s string) *string { return &s }

func testSource() *fakeSource {
	return &fakeSource{
		chats: []model.RawChat{
			{
				ID: "chat-1", UserID: "u1", UserName: name("alice"), CreatedAt: 1714557600,
				Chat: []byte(`{"id":"chat-1","title":"t","models":["gpt-4"],"history":{"messages":{
					"m1":{"role":"user","childrenIds":["m2","m3"],"timestamp":1714557600,"content":"q"},
					"m2":{"role":"assistant","model":"gpt-4","parentId":"m1","timestamp":1714557605,"content":"old"},
					"m3":{"role":"assistant","model":"gpt-4","parentId":"m1","timestamp":1714557609,"content":"new"}}}}`),
			},
			{ID: "chat-2", UserID: "u2", UserName: name("bob"), Chat: []byte(`{"history":`)},
			{
				ID: "chat-3", UserID: "u3", UserName: name("dali"),
				Chat: []byte(`{"id":"chat-3","models":["gpt-4"],"history":{"messages":{"x":{"role":"user","content":"hidden"}}}}`),
			},
		},
		feedback: []model.RawFeedback{
			{
				ID: "fb-1", UserID: "u1", UserName: name("alice"), CreatedAt: 1714557700,
				Data: []byte(`{"rating":-1,"ratingText":"wrong"}`),
				Meta: []byte(`{"message_id":"m3"}`),
				Snapshot: []byte(`{"chat":{"chat":{"history":{"messages":{
					"m1":{"role":"user","content":"q"},
					"m3":{"role":"assistant","parentId":"m1","model":"gpt-4","timestamp":1714557609,"content":"new"}}}}}}`),
			},
			{ID: "fb-2", UserID: "u1", UserName: name("alice"), Data: []byte(`{"feedbackStatus":["other"],"rating":0}`)},
		},
	}
}

func newTestReportService(t *testing.T, source *fakeSource, p ReportServiceParams) (ReportService, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Report.Location = time.UTC
	cfg.Report.OutputDir = dir

	users := filter.NewUserFilter([]string{"dali", "cz", " cz"})
	models := filter.NewModelNormalizer(nil, []string{"arena-model"})

	p.Config = cfg
	p.Source = source
	p.Flattener = flattener.NewFlattener(users)
	p.Resolver = feedback.NewResolver(users)
	p.Aggregator = metrics.NewAggregator(models, time.UTC)
	p.Extractor = metrics.NewReportExtractor(models)
	p.Writer = export.NewWriter(dir, time.UTC)
	if p.Cache == nil {
		p.Cache = &memoryCache{}
	}
	return NewReportService(p), dir
}

func TestReportService_Run(t *testing.T) {
	metricStore := &fakeMetricStore{}
	fbStore := &fakeFeedbackStore{}
	summaryCache := &memoryCache{}
	svc, dir := newTestReportService(t, testSource(), ReportServiceParams{
		MetricStore:   metricStore,
		FeedbackStore: fbStore,
		Cache:         summaryCache,
	})

	result, err := svc.Run(context.Background(), time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "2024-05-02", result.Date)
	assert.Equal(t, 1, result.SkippedConversations)
	assert.Equal(t, 1, result.QAPairs)
	assert.Equal(t, 1, result.FeedbackEvents)
	require.NotNil(t, result.Summary)
	assert.Equal(t, 1, result.Summary.OverallStats.TotalUserQueries)
	assert.Equal(t, 1, result.Summary.ModelStats["gpt-4"].UsageCount)
	assert.NotContains(t, result.Summary.UserStats, "dali")

	assert.Len(t, result.Files, 4)
	for _, f := range result.Files {
		_, err := os.Stat(f)
		assert.NoError(t, err)
	}
	assert.FileExists(t, filepath.Join(dir, "2024-05-02_summary_stats.json"))

	assert.Len(t, metricStore.events, 2)
	require.Len(t, fbStore.indexed, 1)
	assert.Equal(t, "fb-1", fbStore.indexed[0].FeedbackID)
	assert.Equal(t, "new", fbStore.indexed[0].Answer)
	assert.Equal(t, "2024-05-02", summaryCache.date)
}

func TestReportService_PrefersProducerOverDirectIndexing(t *testing.T) {
	producer := &fakeProducer{}
	fbStore := &fakeFeedbackStore{}
	svc, _ := newTestReportService(t, testSource(), ReportServiceParams{
		Producer:      producer,
		FeedbackStore: fbStore,
	})

	_, err := svc.Run(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Len(t, producer.produced, 1)
	assert.Empty(t, fbStore.indexed)
}

func TestReportService_StageErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		source    *fakeSource
		metrics   *fakeMetricStore
		wantStage string
	}{
		{
			name:      "chat fetch fails",
			source:    &fakeSource{chatErr: boom},
			wantStage: StageFetchChats,
		},
		{
			name:      "feedback fetch fails",
			source:    &fakeSource{feedbackErr: boom},
			wantStage: StageFetchFeedback,
		},
		{
			name:      "metric store fails",
			source:    testSource(),
			metrics:   &fakeMetricStore{err: boom},
			wantStage: StageStoreMetrics,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ReportServiceParams{}
			if tt.metrics != nil {
				p.MetricStore = tt.metrics
			}
			svc, _ := newTestReportService(t, tt.source, p)

			result, err := svc.Run(context.Background(), time.Time{})
			assert.Nil(t, result)
			var stageErr *StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, tt.wantStage, stageErr.Stage)
			assert.ErrorIs(t, err, boom)
			assert.Contains(t, err.Error(), tt.wantStage)
		})
	}
}

func TestReportService_MissingSQLiteFileFailsFetch(t *testing.T) {
	svc, dir := newTestReportService(t, testSource(), ReportServiceParams{})
	cfg := &config.Config{}
	cfg.Source.Driver = "sqlite"
	cfg.Source.DSN = filepath.Join(dir, "webui.db")
	svc.(*reportService).p.Source = database.NewSQLiteSourceRepository(cfg)

	result, err := svc.Run(context.Background(), time.Time{})
	assert.Nil(t, result)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageFetchChats, stageErr.Stage)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoFileExists(t, filepath.Join(dir, time.Now().UTC().Format("2006-01-02")+"_summary_stats.json"))
}

func TestReportService_WriteOutputFails(t *testing.T) {
	svc, dir := newTestReportService(t, testSource(), ReportServiceParams{})
	// A regular file where the output directory should be makes MkdirAll fail.
	blocked := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))
	svc.(*reportService).p.Writer = export.NewWriter(filepath.Join(blocked, "out"), time.UTC)

	_, err := svc.Run(context.Background(), time.Time{})
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageWriteOutput, stageErr.Stage)
}

func TestReportService_Idempotent(t *testing.T) {
	date := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	svc, dir := newTestReportService(t, testSource(), ReportServiceParams{})

	_, err := svc.Run(context.Background(), date)
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(dir, "2024-05-02_summary_stats.json"))
	require.NoError(t, err)

	_, err = svc.Run(context.Background(), date)
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(dir, "2024-05-02_summary_stats.json"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestReportService_RejectsOverlappingRuns(t *testing.T) {
	svc, _ := newTestReportService(t, testSource(), ReportServiceParams{})
	impl := svc.(*reportService)
	impl.processLock.Lock()
	defer impl.processLock.Unlock()

	_, err := svc.Run(context.Background(), time.Time{})
	assert.ErrorIs(t, err, ErrRunInProgress)
}

func TestReportService_LatestSummary(t *testing.T) {
	t.Run("falls back to files on cache miss", func(t *testing.T) {
		svc, dir := newTestReportService(t, testSource(), ReportServiceParams{})
		_, err := svc.LatestSummary(context.Background())
		assert.ErrorIs(t, err, export.ErrNoReport)

		_, err = export.NewWriter(dir, time.UTC).WriteReport(export.Report{Date: "2024-05-01"})
		require.NoError(t, err)

		resp, err := svc.LatestSummary(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "file", resp.Source)
		assert.Equal(t, "2024-05-01", resp.Date)
	})

	t.Run("serves cached summary", func(t *testing.T) {
		c := &memoryCache{date: "2024-05-03", summary: &model.Summary{}}
		svc, _ := newTestReportService(t, testSource(), ReportServiceParams{Cache: c})

		resp, err := svc.LatestSummary(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "cache", resp.Source)
		assert.Equal(t, "2024-05-03", resp.Date)
	})
}
