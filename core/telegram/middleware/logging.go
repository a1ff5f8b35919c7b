package middleware

import (
	"log/slog"

	"github.com/m3rciful/toybot/core/logger"
	tghelpers "github.com/m3rciful/toybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// LoggerMiddleware stores the logging context of the update and, when the
// debug sampler allows, logs what arrived.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		if logger.ShouldSampleDebug() {
			logger.Debug(ctx, logger.ComponentTG, "update.received", receivedAttrs(c)...)
		}
		return next(c)
	}
}

func receivedAttrs(c tele.Context) []slog.Attr {
	attrs := []slog.Attr{slog.String("kind", messageKind(c.Message()))}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if u := c.Sender(); u != nil && u.LanguageCode != "" {
		attrs = append(attrs, slog.String("lang", u.LanguageCode))
	}
	if text := c.Text(); text != "" {
		attrs = append(attrs, slog.String("text", text))
	}
	return attrs
}

// messageKind names the payload of m the way the dialog sees it: text,
// a command or one of the media kinds that get the non-text reply.
func messageKind(m *tele.Message) string {
	switch {
	case m == nil:
		return "other"
	case m.Voice != nil:
		return "voice"
	case m.Audio != nil:
		return "audio"
	case m.Document != nil:
		return "document"
	case m.Photo != nil:
		return "photo"
	case m.Sticker != nil:
		return "sticker"
	case len(m.Text) > 0 && m.Text[0] == '/':
		return "command"
	case m.Text != "":
		return "text"
	}
	return "other"
}
