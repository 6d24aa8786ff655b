package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrProtocolDesync, "illegal byte in waitcommand state")
	assert.Equal(t, ErrProtocolDesync, err.Code)
	assert.Equal(t, "[PROTOCOL_DESYNC] illegal byte in waitcommand state", err.Error())
}

func TestNewf(t *testing.T) {
	err := Newf(ErrPatternCompile, "bad pattern %q", "([")
	assert.Equal(t, ErrPatternCompile, err.Code)
	assert.Contains(t, err.Error(), `bad pattern "(["`)
}

func TestWrap(t *testing.T) {
	inner := fmt.Errorf("read tcp: connection reset by peer")
	err := Wrap(inner, ErrConnectionLost, "server closed the connection")
	require.NotNil(t, err)
	assert.Equal(t, ErrConnectionLost, err.Code)
	assert.ErrorIs(t, err, inner)

	assert.Nil(t, Wrap(nil, ErrConnectionLost, "ignored"))
}

func TestIs_MatchesByCode(t *testing.T) {
	a := New(ErrCommandTimeout, "no trigger fired")
	b := New(ErrCommandTimeout, "different message")
	assert.True(t, errors.Is(a, b))

	c := New(ErrRetryExhausted, "too many retries")
	assert.False(t, errors.Is(a, c))
}

func TestIsErrorCode(t *testing.T) {
	err := Newf(ErrInvalidCodeBlock, "unmatched braces")
	assert.True(t, IsErrorCode(err, ErrInvalidCodeBlock))
	assert.False(t, IsErrorCode(err, ErrPatternCompile))
	assert.False(t, IsErrorCode(errors.New("plain"), ErrInvalidCodeBlock))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrMalformedSubneg, GetErrorCode(New(ErrMalformedSubneg, "short payload")))
	assert.Equal(t, ErrUnknown, GetErrorCode(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", New(ErrObjectNotFound, "no such trigger"))
	assert.Equal(t, ErrObjectNotFound, GetErrorCode(wrapped))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrMalformedSubneg, "truncated MSDP record").
		WithDetail("option", "MSDP").
		WithDetail("length", 3)
	details := GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "MSDP", details["option"])
	assert.Equal(t, 3, details["length"])
}
