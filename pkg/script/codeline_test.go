package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/gomud/pkg/errors"
)

func TestParseLine_Tokens(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain words", "get sword", []string{"get", "sword"}},
		{"leading hash splits off", "#wait 2", []string{"#", "wait", "2"}},
		{"braced group stays one token", "#3 {n;open door}", []string{"#", "3", "{n;open door}"}},
		{"double quotes keep spaces", `say "hello there"`, []string{"say", "hello there"}},
		{"single quotes keep spaces", "say 'hello there'", []string{"say", "hello there"}},
		{"nested braces", "#alias {gp} {get %1 from corpse}", []string{"#", "alias", "{gp}", "{get %1 from corpse}"}},
		{"empty line", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl, err := ParseLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cl.Tokens)
			assert.Equal(t, tt.line, cl.Text)
		})
	}
}

func TestParseLine_SyncMode(t *testing.T) {
	tests := []struct {
		line string
		want SyncMode
	}{
		{"#gag", SyncDontCare}, // one token only, no second to classify
		{"#gag foo", SyncForced},
		{"#replace new text", SyncForced},
		{"#wait 2", AsyncForced},
		{"#wa 2", AsyncForced},
		{"#variable hp 100", SyncDontCare},
		{"look", SyncDontCare},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cl, err := ParseLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cl.Mode)
		})
	}
}

func TestParseLine_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"unmatched closing brace", "get }sword"},
		{"unmatched opening brace", "get {sword"},
		{"unterminated double quote", `say "hello`},
		{"unterminated single quote", "say 'hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLine(tt.line)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidCodeBlock))
		})
	}
}

func TestSyncMode_String(t *testing.T) {
	assert.Equal(t, "dontcare", SyncDontCare.String())
	assert.Equal(t, "sync", SyncForced.String())
	assert.Equal(t, "async", AsyncForced.String())
	assert.Equal(t, "conflict", SyncConflict.String())
}
