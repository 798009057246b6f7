package campus_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	campus "github.com/learnhub/go-campus"
)

func TestIsWithinThresholdPeriod(t *testing.T) {
	tests := []struct {
		name      string
		since     time.Duration
		pattern   string
		want      bool
		expectErr bool
	}{
		{
			name:    "reset one minute ago is inside the throttle window",
			since:   -1 * time.Minute,
			pattern: campus.PasswordResetThrottle,
			want:    true,
		},
		{
			name:    "reset five minutes ago is outside the throttle window",
			since:   -5 * time.Minute,
			pattern: campus.PasswordResetThrottle,
			want:    false,
		},
		{
			name:    "exact boundary counts as outside",
			since:   -2 * time.Minute,
			pattern: campus.PasswordResetThrottle,
			want:    false,
		},
		{
			name:    "compound duration pattern",
			since:   -50 * time.Minute,
			pattern: "1h30m",
			want:    true,
		},
		{
			name:    "future timestamp is always within",
			since:   10 * time.Minute,
			pattern: campus.PasswordResetThrottle,
			want:    true,
		},
		{
			name:      "unparseable pattern",
			since:     0,
			pattern:   "every other tuesday",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := campus.IsWithinThresholdPeriod(time.Now().Add(tt.since), tt.pattern)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsOutsideThresholdPeriod(t *testing.T) {
	recent := time.Now().Add(-30 * time.Second)
	stale := time.Now().Add(-10 * time.Minute)

	outside, err := campus.IsOutsideThresholdPeriod(recent, campus.PasswordResetThrottle)
	require.NoError(t, err)
	assert.False(t, outside)

	outside, err = campus.IsOutsideThresholdPeriod(stale, campus.PasswordResetThrottle)
	require.NoError(t, err)
	assert.True(t, outside)

	_, err = campus.IsOutsideThresholdPeriod(recent, "soon-ish")
	assert.Error(t, err)
}

func TestThresholdHelpersAreComplementary(t *testing.T) {
	samples := []time.Duration{0, -30 * time.Second, -90 * time.Second, -3 * time.Minute, 5 * time.Minute}

	for _, since := range samples {
		when := time.Now().Add(since)

		within, err := campus.IsWithinThresholdPeriod(when, campus.PasswordResetThrottle)
		require.NoError(t, err)

		outside, err := campus.IsOutsideThresholdPeriod(when, campus.PasswordResetThrottle)
		require.NoError(t, err)

		assert.NotEqual(t, within, outside)
	}
}
