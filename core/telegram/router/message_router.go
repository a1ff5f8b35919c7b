package router

import (
	"strings"

	tg "github.com/m3rciful/toybot/core/telegram"
	"github.com/m3rciful/toybot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls fallback behaviour for text and non-text updates.
type TextOptions struct {
	UnknownText tele.HandlerFunc
	// NonText answers voice notes, audio, documents, photos and stickers.
	NonText tele.HandlerFunc
	// Admin gates admin-only commands reached through an alias.
	Admin middleware.AdminOptions
}

var nonTextEndpoints = []string{tele.OnVoice, tele.OnAudio, tele.OnDocument, tele.OnPhoto, tele.OnSticker}

// TextRoutes builds handlers for free text and non-text messages. Text that
// starts with a registered command or alias runs that command. Other text
// goes to the registry fallback, then to UnknownText.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	onText := func(c tele.Context) error {
		if h, name := pick(reg, opts, c.Text()); h != nil {
			return observed(name, h)(c)
		}
		return skipped(c, "unknown_text")
	}
	onOther := func(c tele.Context) error {
		if opts.NonText == nil {
			return skipped(c, "non_text")
		}
		return observed("non_text", opts.NonText)(c)
	}

	routes := []tg.Route{{Endpoint: tele.OnText, Handler: guarded(onText)}}
	for _, ep := range nonTextEndpoints {
		routes = append(routes, tg.Route{Endpoint: ep, Handler: guarded(onOther)})
	}
	return routes
}

func pick(reg *tg.Registry, opts TextOptions, text string) (tele.HandlerFunc, string) {
	text = strings.TrimSpace(text)
	if reg != nil {
		if strings.HasPrefix(text, "/") {
			if key, cmd, ok := reg.LookupCommand(strings.Fields(text)[0]); ok {
				if cmd.AdminOnly {
					return middleware.AdminOnlyMiddleware(opts.Admin)(cmd.Handler), handlerName(key)
				}
				return cmd.Handler, handlerName(key)
			}
		}
		if fb := reg.TextFallback(); fb != nil {
			return fb, "text"
		}
	}
	return opts.UnknownText, "unknown_text"
}
