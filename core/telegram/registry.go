package telegram

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/m3rciful/toybot/core/logger"
	"github.com/m3rciful/toybot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

// Command is a slash command with its menu description.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands are routed only for the configured admin and never shown in the menu.
	AdminOnly bool
	Hidden    bool
	Aliases   []string
}

// Registry holds bot commands and the free-text fallback.
type Registry struct {
	commands     map[string]Command
	aliases      map[string]string
	textFallback tele.HandlerFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		aliases:  make(map[string]string),
	}
}

func slash(name string) string {
	if strings.HasPrefix(name, "/") {
		return name
	}
	return "/" + name
}

// RegisterCommand adds cmd under name, which must start with a slash.
// Invalid and duplicate registrations are logged and skipped.
func (r *Registry) RegisterCommand(name string, cmd Command) {
	if reason := r.rejects(name, cmd); reason != "" {
		logger.Warn(context.Background(), logger.ComponentTGWire, "register.command.skip",
			slog.String("op", name),
			slog.String("cause", reason),
		)
		return
	}
	r.commands[name] = cmd
	for _, a := range cmd.Aliases {
		r.aliases[slash(a)] = name
	}
}

func (r *Registry) rejects(name string, cmd Command) string {
	switch {
	case name == "" || cmd.Handler == nil || cmd.Description == "":
		return "invalid"
	case !strings.HasPrefix(name, "/"):
		return "no_slash_prefix"
	}
	if _, ok := r.commands[name]; ok {
		return "duplicate"
	}
	return ""
}

// ListCommands returns commands sorted by name. With visibleOnly, hidden
// and admin-only commands are left out.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for name, cmd := range r.commands {
		if visibleOnly && (cmd.Hidden || cmd.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(name, "/"), Description: cmd.Description})
	}
	slices.SortFunc(list, func(a, b tele.Command) int { return cmp.Compare(a.Text, b.Text) })
	return list
}

// LookupCommand resolves a name or alias, with or without the slash, to
// the canonical command key.
func (r *Registry) LookupCommand(name string) (string, Command, bool) {
	name = slash(name)
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	cmd, ok := r.commands[name]
	if !ok {
		return "", Command{}, false
	}
	return name, cmd, true
}

// Commands returns all registered commands keyed by name.
func (r *Registry) Commands() map[string]Command {
	return r.commands
}

// SetTextFallback sets the handler for text that is not a command.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

// TextFallback returns the current text fallback handler.
func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

// CommandSetter is the part of tele.Bot used to publish the command menu.
type CommandSetter interface {
	SetCommands(opts ...interface{}) error
}

// SetupCommands publishes visible commands to the Telegram command menu.
func SetupCommands(bot CommandSetter, reg *Registry) {
	if err := bot.SetCommands(reg.ListCommands(true)); err != nil {
		logger.Error(context.Background(), logger.ComponentTGWire, "register.commands.set_failed", netutil.Describe(err)...)
	}
}
