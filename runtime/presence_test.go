package runtime

import (
	"chat-client/errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresence_Update_ExcludesSelf(t *testing.T) {
	req := require.New(t)
	presence := NewPresence(slog.Default())
	presence.SetSelf("bob")

	// When the broker pushes a list containing ourselves
	err := presence.Update([]byte(`["alice","bob"]`))

	// Then we are not part of the set shown to us
	req.NoError(err)
	req.Equal([]string{"alice"}, presence.Users())
}

func TestPresence_Update_EmptyClearsSelection(t *testing.T) {
	req := require.New(t)
	presence := NewPresence(slog.Default())
	presence.SetSelf("bob")
	req.NoError(presence.Update([]byte(`["alice","bob"]`)))
	req.NoError(presence.Select("alice"))

	// When everyone else leaves
	req.NoError(presence.Update([]byte(`[]`)))

	// Then the selected receiver is cleared
	_, ok := presence.Selected()
	req.False(ok)
	req.Empty(presence.Users())
}

func TestPresence_Update_SelectedLeaves(t *testing.T) {
	req := require.New(t)
	presence := NewPresence(slog.Default())
	req.NoError(presence.Update([]byte(`["alice","carol"]`)))
	req.NoError(presence.Select("carol"))

	req.NoError(presence.Update([]byte(`["alice"]`)))

	_, ok := presence.Selected()
	req.False(ok)
}

func TestPresence_Update_SelectedStays(t *testing.T) {
	req := require.New(t)
	presence := NewPresence(slog.Default())
	req.NoError(presence.Update([]byte(`["alice","carol"]`)))
	req.NoError(presence.Select("carol"))

	req.NoError(presence.Update([]byte(`["carol","dave"]`)))

	selected, ok := presence.Selected()
	req.True(ok)
	req.Equal("carol", selected)
}

func TestPresence_Update_SetShaped(t *testing.T) {
	req := require.New(t)
	presence := NewPresence(slog.Default())
	presence.SetSelf("bob")

	req.NoError(presence.Update([]byte(`{"carol":true,"alice":null,"bob":true}`)))
	req.Equal([]string{"alice", "carol"}, presence.Users())
}

func TestPresence_Update_InvalidKeepsPrevious(t *testing.T) {
	req := require.New(t)
	presence := NewPresence(slog.Default())
	req.NoError(presence.Update([]byte(`["alice"]`)))

	for _, payload := range []string{
		`"alice"`, `42`, `not json`, `["alice", 3]`, `null`,
		`{"sender":"bob","content":"hi","type":"CHAT"}`,
		`{"bob":false}`,
	} {
		err := presence.Update([]byte(payload))
		req.ErrorIs(err, errors.ErrInvalidPresencePayload, payload)
		req.Equal([]string{"alice"}, presence.Users())
	}
}

func TestPresence_Update_SkipsBlankAndDuplicates(t *testing.T) {
	req := require.New(t)
	presence := NewPresence(slog.Default())

	req.NoError(presence.Update([]byte(`["bob", "", null, "alice", "bob"]`)))
	req.Equal([]string{"alice", "bob"}, presence.Users())
}

func TestPresence_Select_Unknown(t *testing.T) {
	req := require.New(t)
	presence := NewPresence(slog.Default())
	req.NoError(presence.Update([]byte(`["alice"]`)))

	req.ErrorIs(presence.Select("zoe"), errors.ErrUnknownReceiver)
	_, ok := presence.Selected()
	req.False(ok)
}

func TestPresence_SetSelf_RemovesFromCurrentSet(t *testing.T) {
	req := require.New(t)
	presence := NewPresence(slog.Default())
	req.NoError(presence.Update([]byte(`["alice","bob"]`)))

	presence.SetSelf("alice")

	req.Equal([]string{"bob"}, presence.Users())
	req.Equal("alice", presence.Self())
}

func TestPresence_Reset(t *testing.T) {
	req := require.New(t)
	presence := NewPresence(slog.Default())
	presence.SetSelf("bob")
	req.NoError(presence.Update([]byte(`["alice"]`)))
	req.NoError(presence.Select("alice"))

	presence.Reset()

	req.Empty(presence.Users())
	req.Empty(presence.Self())
	_, ok := presence.Selected()
	req.False(ok)
}
