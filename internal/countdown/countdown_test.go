package countdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	const now = int64(1_700_000_000_000)

	tests := []struct {
		name      string
		expiresAt int64
		want      string
	}{
		{"already passed", now - 1, Expired},
		{"exactly now", now, Expired},
		{"one second", now + 1_000, "0d:0h:0m:1s"},
		{"sub-second remainder truncates", now + 999, "0d:0h:0m:0s"},
		{"one minute", now + 60_000, "0d:0h:1m:0s"},
		{"mixed", now + 2*86_400_000 + 5*3_600_000 + 30*60_000, "2d:5h:30m:0s"},
		{"full decomposition", now + 86_400_000 + 3_600_000 + 60_000 + 1_000, "1d:1h:1m:1s"},
		{"hours do not carry into days", now + 23*3_600_000, "0d:23h:0m:0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.expiresAt, now))
		})
	}
}

func TestEncodeMonotonic(t *testing.T) {
	// Successive one-second ticks against a fixed expiry must produce
	// strictly decreasing remainders until the sentinel.
	const expiresAt = int64(10_000)

	prevD, prevH, prevM, prevS := 0, 0, 0, 11
	for now := int64(0); now < expiresAt; now += 1_000 {
		s := Encode(expiresAt, now)
		d, h, m, sec, err := Parse(s)
		require.NoError(t, err, "tick at now=%d", now)

		prev := ((prevD*24+prevH)*60+prevM)*60 + prevS
		cur := ((d*24+h)*60+m)*60 + sec
		assert.Less(t, cur, prev, "tick at now=%d", now)

		prevD, prevH, prevM, prevS = d, h, m, sec
	}

	assert.Equal(t, Expired, Encode(expiresAt, expiresAt))
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, s := range []string{
		"",
		Expired,
		"1d:2h:3m",
		"1:2:3:4",
		"1d:2h:3m:4x",
		"xd:0h:0m:0s",
		"1d:2h:3m:4s:5s",
	} {
		_, _, _, _, err := Parse(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestIsUrgent(t *testing.T) {
	tests := []struct {
		remaining string
		want      bool
	}{
		{"0d:0h:5m:0s", true},
		{"0d:0h:5m:1s", false},
		{"0d:0h:4m:59s", true},
		{"0d:0h:0m:1s", true},
		{"0d:1h:0m:0s", false},
		{"1d:0h:0m:0s", false},
		{"1d:0h:2m:0s", false},
		{Expired, false},
		{"", false},
		{"garbage", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsUrgent(tt.remaining), "input %q", tt.remaining)
	}
}
