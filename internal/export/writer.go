package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"chat-insight-backend/internal/model"

	"github.com/rs/zerolog/log"
)

const (
	chatDataSuffix        = "_chat_data.csv"
	feedbackDataSuffix    = "_feedback_data.csv"
	feedbackDetailsSuffix = "_feedback_details.json"
	summarySuffix         = "_summary_stats.json"
)

var ErrNoReport = errors.New("no summary report has been written yet")

type Report struct {
	Date     string
	Pairs    []model.QAPair
	Feedback []model.ResolvedFeedback
	Summary  model.Summary
}

type Writer interface {
	WriteReport(report Report) ([]string, error)
	LatestSummary() (*model.Summary, string, error)
	OutputDir() string
}

type fileWriter struct {
	dir string
	loc *time.Location
	mu  sync.RWMutex
}

// NewWriter renders timestamps in loc, the zone days are bucketed in; nil
// means the process local zone.
func NewWriter(dir string, loc *time.Location) Writer {
	if loc == nil {
		loc = time.Local
	}
	return &fileWriter{dir: dir, loc: loc}
}

// WriteReport writes the four date-prefixed report files. Each file is
// replaced atomically, so re-running a day overwrites it in place. Without
// feedback the details file is removed rather than left over from an earlier run.
func (w *fileWriter) WriteReport(report Report) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", w.dir, err)
	}

	written := make([]string, 0, 4)
	write := func(suffix string, data []byte) error {
		path := filepath.Join(w.dir, report.Date+suffix)
		if err := writeAtomic(path, data); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	chatCSV, err := encodeQAPairs(report.Pairs, w.loc)
	if err != nil {
		return written, fmt.Errorf("failed to encode chat data: %w", err)
	}
	if err := write(chatDataSuffix, chatCSV); err != nil {
		return written, err
	}

	feedbackCSV, err := encodeFeedback(report.Feedback, w.loc)
	if err != nil {
		return written, fmt.Errorf("failed to encode feedback data: %w", err)
	}
	if err := write(feedbackDataSuffix, feedbackCSV); err != nil {
		return written, err
	}

	if len(report.Feedback) == 0 {
		if err := removeStale(filepath.Join(w.dir, report.Date+feedbackDetailsSuffix)); err != nil {
			return written, err
		}
	} else {
		details := make([]model.FeedbackDetail, 0, len(report.Feedback))
		for _, fb := range report.Feedback {
			d := fb.Detail()
			d.CreatedAt = inLocation(d.CreatedAt, w.loc)
			details = append(details, d)
		}
		data, err := json.MarshalIndent(details, "", "  ")
		if err != nil {
			return written, fmt.Errorf("failed to marshal feedback details: %w", err)
		}
		if err := write(feedbackDetailsSuffix, data); err != nil {
			return written, err
		}
	}

	data, err := json.MarshalIndent(report.Summary, "", "    ")
	if err != nil {
		return written, fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := write(summarySuffix, data); err != nil {
		return written, err
	}

	log.Info().Str("dir", w.dir).Strs("files", written).Msg("Report files written")
	return written, nil
}

// LatestSummary loads the newest summary file. Date prefixes sort lexically.
func (w *fileWriter) LatestSummary() (*model.Summary, string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	matches, err := filepath.Glob(filepath.Join(w.dir, "*"+summarySuffix))
	if err != nil {
		return nil, "", err
	}
	if len(matches) == 0 {
		return nil, "", ErrNoReport
	}
	sort.Strings(matches)
	path := matches[len(matches)-1]

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("Failed to read summary file")
		return nil, "", err
	}
	var summary model.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		log.Error().Err(err).Str("file", path).Msg("Failed to unmarshal summary file")
		return nil, "", err
	}
	date := strings.TrimSuffix(filepath.Base(path), summarySuffix)
	return &summary, date, nil
}

func (w *fileWriter) OutputDir() string {
	return w.dir
}

func removeStale(path string) error {
	err := os.Remove(path)
	if err == nil {
		log.Info().Str("file", path).Msg("Removed stale report file")
		return nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("remove %s: %w", path, err)
}

func writeAtomic(path string, data []byte) error {
	tempFilePath := path + ".tmp"
	if err := os.WriteFile(tempFilePath, data, 0o644); err != nil {
		log.Error().Err(err).Str("file", tempFilePath).Msg("Failed to write temporary report file")
		return fmt.Errorf("write %s: %w", tempFilePath, err)
	}
	if err := os.Rename(tempFilePath, path); err != nil {
		log.Error().Err(err).Str("from", tempFilePath).Str("to", path).Msg("Failed to rename report file")
		_ = os.Remove(tempFilePath)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
