package source

import (
	"context"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/objstream/transfer/errors"
)

// Telegram streams a file stored on Telegram's servers, addressed by its
// file identifier. The Bot API resolves the identifier to a download URL
// which is then fetched over HTTP.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	client *http.Client
	fileID string
	name   string
}

// NewTelegram creates a Telegram source for the given file identifier.
// The name is used for logs and session records; pass the original file
// name when available. A nil client uses http.DefaultClient.
func NewTelegram(bot *tgbotapi.BotAPI, client *http.Client, fileID, name string) *Telegram {
	if client == nil {
		client = http.DefaultClient
	}
	if name == "" {
		name = fileID
	}
	return &Telegram{bot: bot, client: client, fileID: fileID, name: name}
}

// Open resolves the file identifier through the Bot API and opens the
// download stream. The size reported by the API is authoritative.
func (t *Telegram) Open(ctx context.Context) (io.ReadCloser, int64, error) {
	file, err := t.bot.GetFile(tgbotapi.FileConfig{FileID: t.fileID})
	if err != nil {
		return nil, 0, errors.NewError("source", errors.ErrSourceRead).
			WithMessage("cannot resolve file: " + err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(t.bot.Token), nil)
	if err != nil {
		return nil, 0, errors.NewError("source", err).WithMessage("cannot build request")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, 0, errors.NewError("source", errors.ErrSourceRead).WithMessage(err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, errors.NewError("source", errors.ErrSourceRead).
			WithMessage("unexpected status " + resp.Status)
	}

	size := int64(file.FileSize)
	if size == 0 && resp.ContentLength > 0 {
		size = resp.ContentLength
	}

	return resp.Body, size, nil
}

// Name returns the display name of the file.
func (t *Telegram) Name() string {
	return t.name
}
