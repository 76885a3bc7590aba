package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTime(t *testing.T) {
	kolkata := LoadZone("Asia/Kolkata")

	cases := []struct {
		in   string
		loc  *time.Location
		want time.Time
	}{
		{"2026-03-02T10:30:00Z", nil, time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)},
		{"2026-03-02T10:30:00+05:30", nil, time.Date(2026, 3, 2, 5, 0, 0, 0, time.UTC)},
		{"2026-03-02T10:30:00", time.UTC, time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)},
		{"2026-03-02T10:30", kolkata, time.Date(2026, 3, 2, 10, 30, 0, 0, kolkata)},
		{"2026-03-02 10:30:15", nil, time.Date(2026, 3, 2, 10, 30, 15, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := ParseDateTime(tc.in, tc.loc)
		require.NoError(t, err, tc.in)
		assert.True(t, tc.want.Equal(got), "%s: got %v want %v", tc.in, got, tc.want)
	}

	for _, bad := range []string{"", "tomorrow", "2026-13-40T99:00"} {
		_, err := ParseDateTime(bad, nil)
		assert.Error(t, err, bad)
	}
}

func TestLoadZone_FallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, LoadZone(""))
	assert.Equal(t, time.UTC, LoadZone("Mars/Olympus_Mons"))
}
