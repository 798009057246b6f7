package campus_test

import (
	"testing"
	"time"

	campus "github.com/learnhub/go-campus"
	"github.com/stretchr/testify/assert"
)

func TestHasUserUUID(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		expected bool
	}{
		{name: "valid uuid", userID: "0d5eb2b6-3bff-4c96-ad34-32a2b7375842", expected: true},
		{name: "not a uuid", userID: "not-a-uuid", expected: false},
		{name: "empty", userID: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &campus.SessionObject{
				UserID:   tt.userID,
				Issuer:   "campus-test",
				IssuedAt: timePtr(time.Now()),
			}
			assert.Equal(t, tt.expected, campus.HasUserUUID(session))
		})
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
