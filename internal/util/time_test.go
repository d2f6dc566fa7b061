package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeFlexible(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "rfc3339", input: "2024-05-01T10:00:00Z", want: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{name: "rfc3339 with offset", input: "2024-05-01T18:00:00+08:00", want: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{name: "epoch millis", input: "1714557600000", want: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{name: "rfc1123z", input: "Wed, 01 May 2024 18:00:00 +0800", want: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{name: "garbage", input: "yesterday", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeFlexible(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestFromEpochSeconds(t *testing.T) {
	assert.Nil(t, FromEpochSeconds(nil))

	sec := 1714557600.5
	got := FromEpochSeconds(&sec)
	require.NotNil(t, got)
	assert.Equal(t, int64(1714557600), got.Unix())
	assert.Equal(t, 500*time.Millisecond, time.Duration(got.Nanosecond()))
}

func TestDay(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	ts := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-05-01", Day(ts, time.UTC))
	assert.Equal(t, "2024-05-02", Day(ts, shanghai))
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2024-05-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-02", Day(d, time.UTC))
	assert.Equal(t, "2024-05-02", Day(d, time.FixedZone("UTC+8", 8*3600)))
	assert.Equal(t, "2024-05-02", Day(d, time.FixedZone("UTC-7", -7*3600)))

	_, err = ParseDay("05/02/2024")
	assert.Error(t, err)
}
