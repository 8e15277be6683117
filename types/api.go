package types

import "time"

// TaskInfo is the read-only view of a DownloadTask served by the API
type TaskInfo struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	FileName   string     `json:"fileName"`
	SavePath   string     `json:"savePath"`
	Status     TaskStatus `json:"status"`
	Downloaded int64      `json:"downloaded"`
	Total      int64      `json:"total"`
	Progress   float64    `json:"progress"` // 0-100 percentage, 0 when total unknown
	Error      string     `json:"error,omitempty"`
	StartTime  time.Time  `json:"startTime"`
}

// StatusCounts summarizes a user's queue by task status
type StatusCounts struct {
	Queued      int `json:"queued"`
	Downloading int `json:"downloading"`
	Completed   int `json:"completed"`
	Failed      int `json:"failed"`
}

// Total returns the number of tasks across all statuses
func (c StatusCounts) Total() int {
	return c.Queued + c.Downloading + c.Completed + c.Failed
}

// LibraryFile represents a file found under the download root
type LibraryFile struct {
	Filename string         `json:"filename"`
	Path     string         `json:"path"`
	Size     int64          `json:"size"`
	Format   string         `json:"format"`
	Metadata *AudioMetadata `json:"metadata,omitempty"`
}

// AudioMetadata represents tag metadata for a downloaded audio file
type AudioMetadata struct {
	Title       string `json:"title,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	TrackNumber int    `json:"trackNumber,omitempty"`
}
