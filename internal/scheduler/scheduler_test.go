package scheduler

import (
	"context"
	"testing"
	"time"

	"chat-insight-backend/config"
	"chat-insight-backend/internal/dto"
	"chat-insight-backend/internal/model"
	"chat-insight-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

type countingReportService struct {
	runs int
	err  error
}

func (s *countingReportService) Run(context.Context, time.Time) (*model.ReportResult, error) {
	s.runs++
	if s.err != nil {
		return nil, s.err
	}
	return &model.ReportResult{RunID: "r", Date: "2024-05-02"}, nil
}

func (s *countingReportService) LatestSummary(context.Context) (*dto.SummaryResponse, error) {
	return nil, nil
}

func testConfig(schedule string) *config.Config {
	cfg := &config.Config{}
	cfg.Report.Schedule = schedule
	cfg.Report.Location = time.UTC
	return cfg
}

func TestNewScheduler(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		wantErr  bool
		wantCron bool
	}{
		{name: "seconds field", schedule: "0 30 1 * * *", wantCron: true},
		{name: "descriptor", schedule: "@daily", wantCron: true},
		{name: "disabled", schedule: ""},
		{name: "invalid", schedule: "every night", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := fxtest.NewLifecycle(t)
			c, err := NewScheduler(lc, testConfig(tt.schedule), &countingReportService{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCron, c != nil)
			if c != nil {
				assert.Len(t, c.Entries(), 1)
			}
		})
	}
}

func TestRunScheduledReport(t *testing.T) {
	svc := &countingReportService{}
	runScheduledReport(svc)
	assert.Equal(t, 1, svc.runs)

	busy := &countingReportService{err: service.ErrRunInProgress}
	runScheduledReport(busy)
	assert.Equal(t, 1, busy.runs)
}
