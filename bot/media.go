package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MediaRef identifies one downloadable attachment on a Telegram message.
// It implements types.FileRef for the download engine.
type MediaRef struct {
	FileID   string
	FileName string
	FileSize int64
	Kind     string // "document", "video", "audio", "voice", "photo"
}

// Name returns the filename the attachment should be saved as
func (m *MediaRef) Name() string {
	return m.FileName
}

// Size returns the advertised size in bytes, 0 when unknown
func (m *MediaRef) Size() int64 {
	return m.FileSize
}

// MediaRefFromMessage extracts a downloadable attachment from a message.
// Returns nil when the message carries no supported media.
func MediaRefFromMessage(message *tgbotapi.Message) *MediaRef {
	switch {
	case message.Document != nil:
		doc := message.Document
		name := doc.FileName
		if name == "" {
			name = fmt.Sprintf("document_%s", doc.FileUniqueID)
		}
		return &MediaRef{FileID: doc.FileID, FileName: name, FileSize: int64(doc.FileSize), Kind: "document"}

	case message.Video != nil:
		video := message.Video
		name := video.FileName
		if name == "" {
			name = fmt.Sprintf("video_%s.mp4", video.FileUniqueID)
		}
		return &MediaRef{FileID: video.FileID, FileName: name, FileSize: int64(video.FileSize), Kind: "video"}

	case message.Audio != nil:
		audio := message.Audio
		name := audio.FileName
		if name == "" {
			name = fmt.Sprintf("audio_%s.mp3", audio.FileUniqueID)
		}
		return &MediaRef{FileID: audio.FileID, FileName: name, FileSize: int64(audio.FileSize), Kind: "audio"}

	case message.Voice != nil:
		voice := message.Voice
		name := fmt.Sprintf("voice_%s.ogg", voice.FileUniqueID)
		return &MediaRef{FileID: voice.FileID, FileName: name, FileSize: int64(voice.FileSize), Kind: "voice"}

	case len(message.Photo) > 0:
		// Telegram sends multiple resolutions; take the largest
		photo := message.Photo[len(message.Photo)-1]
		name := fmt.Sprintf("photo_%s.jpg", photo.FileUniqueID)
		return &MediaRef{FileID: photo.FileID, FileName: name, FileSize: int64(photo.FileSize), Kind: "photo"}
	}

	return nil
}
