package campus

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logCall struct {
	level   string
	message string
	args    []any
}

type captureLogger struct {
	calls []logCall
}

func (l *captureLogger) record(level, message string, args ...any) {
	l.calls = append(l.calls, logCall{level: level, message: message, args: args})
}

func (l *captureLogger) Debug(message string, args ...any) { l.record("debug", message, args...) }
func (l *captureLogger) Info(message string, args ...any)  { l.record("info", message, args...) }
func (l *captureLogger) Error(message string, args ...any) { l.record("error", message, args...) }

var _ Logger = (*captureLogger)(nil)
var _ Logger = defLogger{}

func TestNewline(t *testing.T) {
	assert.Equal(t, "message\n", newline("message"))
	assert.Equal(t, "message\n", newline("message\n"))
	assert.Equal(t, "", newline(""))
}

func TestTokenServiceLogsPurposeMismatch(t *testing.T) {
	logger := &captureLogger{}
	svc := NewTokenService([]byte("test-signing-key"), "campus-test", jwt.ClaimStrings{"campus-api"}, logger)

	token, err := svc.GeneratePasswordReset("user-1", "amelia@example.com")
	require.NoError(t, err)

	_, err = svc.ValidatePurpose(token, PurposeSession)
	require.Error(t, err)

	require.NotEmpty(t, logger.calls)
	assert.Equal(t, "error", logger.calls[0].level)
	assert.Equal(t, "TokenService purpose mismatch", logger.calls[0].message)
}
