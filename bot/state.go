package bot

import (
	"log"
	"sync"
)

// User flow states
const (
	StateLoggedIn           = "logged_in"
	StateSelectingDirectory = "selecting_directory"
	StateAwaitingFilename   = "awaiting_filename"
	StateAwaitingFolderName = "awaiting_folder_name"
)

// session holds the per-user conversational state. Everything here is
// in-memory and lost on restart.
type session struct {
	chatID           int64
	state            string
	pending          *MediaRef
	browsePath       string
	selectedDir      string
	createFolderPath string
}

// UserState tracks each user's chat and conversational flow. It implements
// services.ChatResolver for the notifier and the engine.
type UserState struct {
	sessions map[string]*session
	mu       sync.RWMutex
}

// NewUserState creates an empty state store
func NewUserState() *UserState {
	return &UserState{
		sessions: make(map[string]*session),
	}
}

func (s *UserState) sessionFor(userID string) *session {
	if sess, ok := s.sessions[userID]; ok {
		return sess
	}
	sess := &session{}
	s.sessions[userID] = sess
	return sess
}

// SetChatID records the chat a user's notifications should go to
func (s *UserState) SetChatID(userID string, chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionFor(userID).chatID = chatID
}

// ResolveChat returns the user's chat, if one has been seen
func (s *UserState) ResolveChat(userID string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok || sess.chatID == 0 {
		return 0, false
	}
	return sess.chatID, true
}

// SetState moves the user to a new flow state
func (s *UserState) SetState(userID, state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionFor(userID).state = state
	log.Printf("User %s state changed to: %s", userID, state)
}

// State returns the user's current flow state
func (s *UserState) State(userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess.state
	}
	return ""
}

// SetPendingMedia stashes the attachment awaiting a directory choice
func (s *UserState) SetPendingMedia(userID string, ref *MediaRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionFor(userID).pending = ref
}

// PendingMedia returns the stashed attachment, if any
func (s *UserState) PendingMedia(userID string) *MediaRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess.pending
	}
	return nil
}

// ClearPendingMedia drops the stashed attachment
func (s *UserState) ClearPendingMedia(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		sess.pending = nil
	}
}

// SetSelectedDir records the directory picked for the pending download
func (s *UserState) SetSelectedDir(userID, dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionFor(userID).selectedDir = dir
}

// SelectedDir returns the directory picked for the pending download
func (s *UserState) SelectedDir(userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess.selectedDir
	}
	return ""
}

// SetCreateFolderPath records where a requested new folder should go
func (s *UserState) SetCreateFolderPath(userID, dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionFor(userID).createFolderPath = dir
}

// CreateFolderPath returns where a requested new folder should go
func (s *UserState) CreateFolderPath(userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess.createFolderPath
	}
	return ""
}

// SetBrowsePath records the directory the user is currently browsing
func (s *UserState) SetBrowsePath(userID, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionFor(userID).browsePath = path
}

// BrowsePath returns the directory the user is currently browsing
func (s *UserState) BrowsePath(userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess.browsePath
	}
	return ""
}
