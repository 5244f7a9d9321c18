package moderation

import (
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

// Dictionary words are long enough not to collide with ordinary chat ("he" in "the").
func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	mod, err := NewModerator([]string{"spam", "snake", "troll"}, replacementChar, log)
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
		words    []string
	}{
		{
			name:     "Word inside a chat line",
			input:    "bob: that snake again",
			expected: "bob: that ***** again",
			words:    []string{"snake"},
		},
		{
			name:     "Leet digit inside a longer word",
			input:    "Stop sp4mming",
			expected: "Stop ****ming",
			words:    []string{"spam"},
		},
		{
			name:     "Dotted uppercase",
			input:    "T.R.O.L.L alert",
			expected: "********* alert",
			words:    []string{"troll"},
		},
		{
			name:     "Dollar sign for s",
			input:    "$nake in the chat",
			expected: "***** in the chat",
			words:    []string{"snake"},
		},
		{
			name:     "Two words keep their order",
			input:    "snake and troll",
			expected: "***** and *****",
			words:    []string{"snake", "troll"},
		},
		{
			name:     "Accents around a match",
			input:    "Café troll",
			expected: "Café *****",
			words:    []string{"troll"},
		},
		{
			name:     "Nothing to mask",
			input:    "hello everyone",
			expected: "hello everyone",
			words:    nil,
		},
		{
			name:     "Empty line",
			input:    "",
			expected: "",
			words:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, words := mod.Censor(tt.input)
			require.Equal(t, tt.expected, content)
			require.Equal(t, tt.words, words)
		})
	}
}

func TestModerator_NoiseOnlyWordsAreSkipped(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given a dictionary polluted by punctuation-only entries
	mod, err := NewModerator([]string{"...", ",,,", "", "troll"}, replacementChar, log)
	req.NoError(err)

	// Then real words are still masked
	content, words := mod.Censor("no troll here")
	req.Equal("no ***** here", content)
	req.Equal([]string{"troll"}, words)

	// And punctuation in messages is left alone
	content, words = mod.Censor("wait ...")
	req.Equal("wait ...", content)
	req.Nil(words)
}

func TestModerator_EmptyDictionaryPassesThrough(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	mod, err := NewModerator(nil, replacementChar, log)
	req.NoError(err)

	content, words := mod.Censor("snake <b>bold</b>")
	req.Equal("snake <b>bold</b>", content)
	req.Nil(words)
}
