package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineTexts(cb *CodeBlock) []string {
	out := make([]string, len(cb.Lines))
	for i, cl := range cb.Lines {
		out[i] = cl.Text
	}
	return out
}

func TestParseBlock_SplitsOnSemicolons(t *testing.T) {
	cb, err := ParseBlock("n;open door;e")
	require.NoError(t, err)
	assert.Equal(t, []string{"n", "open door", "e"}, lineTexts(cb))
}

func TestParseBlock_BraceWrapperEquivalence(t *testing.T) {
	wrapped, err := ParseBlock("{a;b;c}")
	require.NoError(t, err)
	bare, err := ParseBlock("a;b;c")
	require.NoError(t, err)

	require.Len(t, wrapped.Lines, 3)
	assert.Equal(t, lineTexts(bare), lineTexts(wrapped))
}

func TestParseBlock_SemicolonInsideBracesIsNotASplit(t *testing.T) {
	cb, err := ParseBlock("#3 {n;open door}")
	require.NoError(t, err)
	require.Len(t, cb.Lines, 1)
	assert.Equal(t, []string{"#", "3", "{n;open door}"}, cb.Lines[0].Tokens)
}

func TestParseBlock_NestedGroupsFlatten(t *testing.T) {
	cb, err := ParseBlock("{a;b};{c;d}")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, lineTexts(cb))
}

func TestParseBlock_EmptySegmentsDropped(t *testing.T) {
	cb, err := ParseBlock("a;;b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lineTexts(cb))
}

func TestParseBlock_SingleCommand(t *testing.T) {
	cb, err := ParseBlock("look")
	require.NoError(t, err)
	require.Len(t, cb.Lines, 1)
	assert.Equal(t, "look", cb.Lines[0].Text)
}

func TestParseBlock_SyncModeFolding(t *testing.T) {
	tests := []struct {
		name string
		code string
		want SyncMode
	}{
		{"all plain", "n;e;s", SyncDontCare},
		{"one sync line", "n;#gag foo;e", SyncForced},
		{"one async line", "n;#wait 2;e", AsyncForced},
		{"sync absorbs dontcare", "#gag a;#gag b;look", SyncForced},
		{"sync and async conflict", "#gag foo;#wait 2", SyncConflict},
		{"async then sync conflict", "#wait 2;#replace bar", SyncConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, err := ParseBlock(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cb.Mode)
		})
	}
}

func TestParseBlock_UnmatchedBrace(t *testing.T) {
	_, err := ParseBlock("a};b")
	assert.Error(t, err)
}
