package telegram

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegistryLookupByAlias(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/help", Command{Handler: noop, Description: "Справка", Aliases: []string{"помощь"}})

	key, _, ok := reg.LookupCommand("помощь")
	require.True(t, ok)
	assert.Equal(t, "/help", key)

	key, _, ok = reg.LookupCommand("help")
	require.True(t, ok)
	assert.Equal(t, "/help", key)

	_, _, ok = reg.LookupCommand("/nope")
	assert.False(t, ok)
}

func TestRegistrySkipsInvalid(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("start", Command{Handler: noop, Description: "x"})
	reg.RegisterCommand("/empty", Command{Description: "x"})
	reg.RegisterCommand("/start", Command{Handler: noop, Description: "first"})
	reg.RegisterCommand("/start", Command{Handler: noop, Description: "second"})

	require.Len(t, reg.Commands(), 1)
	assert.Equal(t, "first", reg.Commands()["/start"].Description)
}

type fakeSetter struct {
	got []tele.Command
	err error
}

func (f *fakeSetter) SetCommands(opts ...interface{}) error {
	f.got = opts[0].([]tele.Command)
	return f.err
}

func TestSetupCommandsHidesAdminOnly(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/stats", Command{Handler: noop, Description: "Статистика"})
	reg.RegisterCommand("/start", Command{Handler: noop, Description: "Начать"})
	reg.RegisterCommand("/stats_all", Command{Handler: noop, Description: "Всё", AdminOnly: true})

	setter := &fakeSetter{err: errors.New("offline")}
	SetupCommands(setter, reg)

	require.Len(t, setter.got, 2)
	assert.Equal(t, "start", setter.got[0].Text)
	assert.Equal(t, "stats", setter.got[1].Text)
}
