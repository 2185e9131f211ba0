package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxImportFileSize = 20 << 20 // лимит Bot API на скачивание

var fileHTTPClient = &http.Client{Timeout: 30 * time.Second}

// downloadDocument скачивает присланный пользователем файл через
// file API Telegram. Закрыть reader обязан вызывающий.
func (b *Bot) downloadDocument(ctx context.Context, fileID string) (io.ReadCloser, error) {
	url, err := b.tgService.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := fileHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download file: unexpected status %s", resp.Status)
	}

	return readCloser{Reader: io.LimitReader(resp.Body, maxImportFileSize), Closer: resp.Body}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}
