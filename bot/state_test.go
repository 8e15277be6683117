package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveChatUnknownUser(t *testing.T) {
	state := NewUserState()

	_, ok := state.ResolveChat("nobody")
	assert.False(t, ok)
}

func TestResolveChatAfterSet(t *testing.T) {
	state := NewUserState()
	state.SetChatID("user1", 42)

	chatID, ok := state.ResolveChat("user1")
	require.True(t, ok)
	assert.Equal(t, int64(42), chatID)
}

func TestPendingMediaLifecycle(t *testing.T) {
	state := NewUserState()
	ref := &MediaRef{FileID: "f1", FileName: "song.mp3", FileSize: 10, Kind: "audio"}

	assert.Nil(t, state.PendingMedia("user1"))

	state.SetPendingMedia("user1", ref)
	got := state.PendingMedia("user1")
	require.NotNil(t, got)
	assert.Equal(t, "song.mp3", got.FileName)

	state.ClearPendingMedia("user1")
	assert.Nil(t, state.PendingMedia("user1"))
}

func TestStateTransitions(t *testing.T) {
	state := NewUserState()

	assert.Empty(t, state.State("user1"))

	state.SetState("user1", StateLoggedIn)
	assert.Equal(t, StateLoggedIn, state.State("user1"))

	state.SetState("user1", StateSelectingDirectory)
	assert.Equal(t, StateSelectingDirectory, state.State("user1"))
}

func TestSelectedDirLifecycle(t *testing.T) {
	state := NewUserState()

	assert.Empty(t, state.SelectedDir("user1"))

	state.SetSelectedDir("user1", "/downloads/Music")
	assert.Equal(t, "/downloads/Music", state.SelectedDir("user1"))

	state.SetSelectedDir("user1", "")
	assert.Empty(t, state.SelectedDir("user1"))
}

func TestCreateFolderPath(t *testing.T) {
	state := NewUserState()

	assert.Empty(t, state.CreateFolderPath("user1"))

	state.SetCreateFolderPath("user1", "/downloads")
	assert.Equal(t, "/downloads", state.CreateFolderPath("user1"))
}

func TestBrowsePathPerUser(t *testing.T) {
	state := NewUserState()

	state.SetBrowsePath("user1", "/downloads/Music")
	state.SetBrowsePath("user2", "/downloads/Video")

	assert.Equal(t, "/downloads/Music", state.BrowsePath("user1"))
	assert.Equal(t, "/downloads/Video", state.BrowsePath("user2"))
	assert.Empty(t, state.BrowsePath("user3"))
}
