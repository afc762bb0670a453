package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/internal/config"
)

func newValidator() *InputValidator {
	return NewInputValidator(config.DefaultServerConfig())
}

func TestValidateUsername(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain name", "alice", "alice", false},
		{"digits and separators", "user_42-a", "user_42-a", false},
		{"surrounding whitespace trimmed", "  alice  ", "alice", false},
		{"empty", "", "", true},
		{"only whitespace", "   ", "", true},
		{"spaces inside", "al ice", "", true},
		{"script injection", "<script>", "", true},
		{"too long", strings.Repeat("a", 51), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateUsername(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestValidateRoomName(t *testing.T) {
	v := newValidator()

	got, err := v.ValidateRoomName(" general ")
	require.NoError(t, err)
	require.Equal(t, "general", got)

	_, err = v.ValidateRoomName("")
	require.Error(t, err)

	_, err = v.ValidateRoomName("two words")
	require.Error(t, err)

	_, err = v.ValidateRoomName(strings.Repeat("r", 51))
	require.Error(t, err)
}

func TestValidateMessage(t *testing.T) {
	v := newValidator()

	t.Run("plain text passes through", func(t *testing.T) {
		got, err := v.ValidateMessage("hello there")
		require.NoError(t, err)
		require.Equal(t, "hello there", got)
	})

	t.Run("whitespace is trimmed", func(t *testing.T) {
		got, err := v.ValidateMessage("  hi  ")
		require.NoError(t, err)
		require.Equal(t, "hi", got)
	})

	t.Run("markup is escaped", func(t *testing.T) {
		got, err := v.ValidateMessage(`<img src=x onerror="x">`)
		require.NoError(t, err)
		require.NotContains(t, got, "<")
		require.NotContains(t, got, ">")
	})

	t.Run("empty is rejected", func(t *testing.T) {
		_, err := v.ValidateMessage("   ")
		require.Error(t, err)
	})

	t.Run("over the length limit is rejected", func(t *testing.T) {
		_, err := v.ValidateMessage(strings.Repeat("m", 1001))
		require.Error(t, err)
	})

	t.Run("limit counts runes not bytes", func(t *testing.T) {
		_, err := v.ValidateMessage(strings.Repeat("é", 1000))
		require.NoError(t, err)
	})
}
