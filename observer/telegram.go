package observer

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/objstream/transfer/transfertypes"
)

// Telegram edits a single chat message in place with each snapshot, so the
// chat shows one live status line instead of a stream of messages. Wrap it
// in Throttled when the pipeline interval is shorter than the Bot API's
// edit quota.
type Telegram struct {
	bot       *tgbotapi.BotAPI
	chatID    int64
	messageID int
	title     string

	lastText string
}

// NewTelegram creates an observer that edits the given message. The title
// is rendered above the progress line, typically the file name.
func NewTelegram(bot *tgbotapi.BotAPI, chatID int64, messageID int, title string) *Telegram {
	return &Telegram{
		bot:       bot,
		chatID:    chatID,
		messageID: messageID,
		title:     title,
	}
}

// Publish renders the snapshot and edits the message. Edits that would not
// change the text are skipped, since the Bot API rejects no-op edits.
func (t *Telegram) Publish(snapshot transfertypes.ProgressSnapshot) {
	text := t.render(snapshot)
	if text == t.lastText {
		return
	}

	edit := tgbotapi.NewEditMessageText(t.chatID, t.messageID, text)
	if _, err := t.bot.Send(edit); err != nil {
		// A failed edit only stales the display; the next snapshot tries again.
		return
	}
	t.lastText = text
}

// render formats one status message.
func (t *Telegram) render(s transfertypes.ProgressSnapshot) string {
	verb := "Downloading"
	if s.Stage == transfertypes.StateUploading {
		verb = "Uploading"
	}

	eta := "?"
	if s.ETAKnown {
		eta = FormatETA(s.ETA)
	}

	return fmt.Sprintf("%s\n%s %s\n%s %.1f%% of %s at %s/s, ETA %s",
		t.title,
		verb, Bar(s.Percent),
		HumanBytes(s.Transferred), s.Percent, HumanBytes(s.Total),
		HumanBytes(int64(s.Speed)), eta)
}
