package bot

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"telefetch/services"
	"telefetch/types"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramFetcher downloads message attachments through the Bot API file
// endpoint. It implements services.Fetcher.
type TelegramFetcher struct {
	api    *tgbotapi.BotAPI
	client *http.Client
}

// NewTelegramFetcher creates a fetcher backed by the given Bot API client
func NewTelegramFetcher(api *tgbotapi.BotAPI) *TelegramFetcher {
	return &TelegramFetcher{
		api:    api,
		client: http.DefaultClient,
	}
}

// Fetch streams the referenced attachment into destPath. The transfer goes
// through a .part file renamed into place on success, so a completed path
// never holds a partial download.
func (f *TelegramFetcher) Fetch(ctx context.Context, ref types.FileRef, destPath string, onProgress services.ProgressFunc) (string, error) {
	mref, ok := ref.(*MediaRef)
	if !ok {
		return "", fmt.Errorf("unsupported file reference %T", ref)
	}

	fileURL, err := f.api.GetFileDirectURL(mref.FileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s fetching file", resp.Status)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = ref.Size()
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create destination directory: %w", err)
	}

	partPath := destPath + ".part"
	out, err := os.Create(partPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", partPath, err)
	}

	reader := &progressReader{reader: resp.Body, total: total, onProgress: onProgress}
	_, copyErr := io.Copy(out, reader)
	closeErr := out.Close()
	if copyErr != nil {
		os.Remove(partPath)
		return "", fmt.Errorf("transfer interrupted: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(partPath)
		return "", closeErr
	}

	return finalizeDownload(partPath, destPath)
}

// finalizeDownload renames the .part file into place. A .part path is never
// reported as the result: the library scan ignores those, so a rename that
// cannot be made to stick fails the transfer instead.
func finalizeDownload(partPath, destPath string) (string, error) {
	err := os.Rename(partPath, destPath)
	if err == nil {
		return destPath, nil
	}

	log.Printf("Failed to rename %s, retrying: %v", partPath, err)
	time.Sleep(100 * time.Millisecond)
	if err = os.Rename(partPath, destPath); err != nil {
		os.Remove(partPath)
		return "", fmt.Errorf("failed to finalize %s: %w", destPath, err)
	}
	return destPath, nil
}

// progressReader counts bytes as they stream through and reports them to
// the engine's progress callback
type progressReader struct {
	reader     io.Reader
	received   int64
	total      int64
	onProgress services.ProgressFunc
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.received += int64(n)
		if r.onProgress != nil {
			r.onProgress(r.received, r.total)
		}
	}
	return n, err
}
