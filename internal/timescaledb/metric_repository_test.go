package timescaledb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWhereBuilder(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	w := timeRange(start, end, []string{"gpt-4", "聆境 1.1"})

	assert.Equal(t, "time >= $1 AND time < $2 AND model IN ($3,$4)", w.sql())
	assert.Equal(t, []interface{}{start, end, "gpt-4", "聆境 1.1"}, w.args)
}

func TestWhereBuilder_OffsetsAfterPresetArgs(t *testing.T) {
	w := &whereBuilder{}
	w.args = append(w.args, "1 day")
	w.add("metric_name = ?", "usage_event")
	w.addIn(colModel, nil)
	w.add("tags->>'rating' IS NOT NULL")

	assert.Equal(t, "metric_name = $2 AND tags->>'rating' IS NOT NULL", w.sql())
	assert.Len(t, w.args, 2)
}
