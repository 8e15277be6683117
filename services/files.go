package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"telefetch/types"

	"github.com/dhowden/tag"
)

// LibraryService interface defines methods for browsing downloaded files
type LibraryService interface {
	ScanFiles(rootPath string) ([]types.LibraryFile, error)
	ExtractAudioMetadata(filePath string) *types.AudioMetadata
	ValidateFilePath(path string) error
	GetContentType(filePath string) string
}

// libraryService implements the LibraryService interface
type libraryService struct{}

// NewLibraryService creates a new library service
func NewLibraryService() LibraryService {
	return &libraryService{}
}

var audioExtensions = map[string]string{
	".flac": "flac",
	".mp3":  "mp3",
	".m4a":  "m4a",
	".ogg":  "ogg",
}

// ScanFiles recursively scans the download root for completed files.
// Audio files additionally carry tag metadata.
func (s *libraryService) ScanFiles(rootPath string) ([]types.LibraryFile, error) {
	var files []types.LibraryFile

	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Printf("Error accessing path %s: %v", path, err)
			return nil // Continue walking, don't fail entire scan
		}
		if info.IsDir() || strings.HasSuffix(path, ".part") {
			return nil
		}

		relativePath, err := filepath.Rel(rootPath, path)
		if err != nil {
			relativePath = path
		}

		ext := strings.ToLower(filepath.Ext(path))
		format, isAudio := audioExtensions[ext]
		if !isAudio {
			format = strings.TrimPrefix(ext, ".")
		}

		file := types.LibraryFile{
			Filename: info.Name(),
			Path:     relativePath,
			Size:     info.Size(),
			Format:   format,
		}
		if isAudio {
			file.Metadata = s.ExtractAudioMetadata(path)
		}

		files = append(files, file)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// GetContentType returns the MIME type to serve a file with
func (s *libraryService) GetContentType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".flac":
		return "audio/flac"
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/mp4"
	case ".ogg":
		return "audio/ogg"
	case ".mp4":
		return "video/mp4"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// ExtractAudioMetadata extracts tag metadata from an audio file with a
// filename-based fallback for untagged files
func (s *libraryService) ExtractAudioMetadata(filePath string) *types.AudioMetadata {
	file, err := os.Open(filePath)
	if err != nil {
		log.Printf("Warning: Could not open audio file %s: %v", filePath, err)
		return s.extractMetadataFromPath(filePath)
	}
	defer file.Close()

	meta, err := tag.ReadFrom(file)
	if err != nil {
		log.Printf("Warning: Could not parse audio metadata from %s: %v", filePath, err)
		return s.extractMetadataFromPath(filePath)
	}

	metadata := &types.AudioMetadata{
		Title:  meta.Title(),
		Artist: meta.Artist(),
		Album:  meta.Album(),
	}
	track, _ := meta.Track()
	metadata.TrackNumber = track

	if metadata.Title == "" || metadata.Artist == "" || metadata.Album == "" {
		fallback := s.extractMetadataFromPath(filePath)
		if metadata.Title == "" {
			metadata.Title = fallback.Title
		}
		if metadata.Artist == "" {
			metadata.Artist = fallback.Artist
		}
		if metadata.Album == "" {
			metadata.Album = fallback.Album
		}
	}

	return metadata
}

var trackNumberPrefix = regexp.MustCompile(`^(\d+)[\.\-\s]+(.+)`)

// extractMetadataFromPath derives metadata from the file path as fallback.
// Expects the Artist/Album/Track layout where present.
func (s *libraryService) extractMetadataFromPath(filePath string) *types.AudioMetadata {
	metadata := &types.AudioMetadata{}

	parts := strings.Split(filepath.ToSlash(filePath), "/")
	if len(parts) >= 3 {
		metadata.Artist = parts[len(parts)-3]
	}
	if len(parts) >= 2 {
		metadata.Album = parts[len(parts)-2]
	}

	filename := filepath.Base(filePath)
	title := strings.TrimSuffix(filename, filepath.Ext(filename))

	if matches := trackNumberPrefix.FindStringSubmatch(title); len(matches) > 2 {
		title = matches[2]
		if trackNum, err := strconv.Atoi(matches[1]); err == nil {
			metadata.TrackNumber = trackNum
		}
	}

	metadata.Title = title
	return metadata
}

// ValidateFilePath checks for path traversal attempts and other unsafe paths
func (s *libraryService) ValidateFilePath(path string) error {
	if strings.Contains(path, "..") {
		return fmt.Errorf("path traversal not allowed")
	}
	if strings.HasPrefix(path, "/") {
		return fmt.Errorf("absolute paths not allowed")
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty path not allowed")
	}
	return nil
}
