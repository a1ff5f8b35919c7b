package app

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// consoleUserID is the session id of the local console user.
const consoleUserID int64 = 0

const prompt = "> "

// chat reads utterances line by line until EOF, /quit or ctx cancellation.
func (a *App) chat(ctx context.Context) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(a.opts.In)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
		scanErr <- sc.Err()
	}()

	fmt.Fprintln(a.opts.Out, a.comp.Engine.Start(consoleUserID))
	for {
		fmt.Fprint(a.opts.Out, prompt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(a.opts.Out)
				return <-scanErr
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			answer, quit := a.consoleReply(ctx, line)
			if quit {
				return nil
			}
			fmt.Fprintln(a.opts.Out, answer)
		}
	}
}

func (a *App) consoleReply(ctx context.Context, line string) (string, bool) {
	switch strings.ToLower(line) {
	case "/quit", "/exit":
		return "", true
	case "/start":
		return a.comp.Engine.Start(consoleUserID), false
	case "/help":
		return a.comp.Engine.Help(consoleUserID), false
	case "/stats":
		sc, _ := a.comp.Store.Snapshot(consoleUserID)
		return userStatsText(sc.Stats), false
	case "/stats_all":
		return a.totalStats(ctx), false
	case "/reset":
		a.comp.Store.Reset(consoleUserID)
		return msgReset, false
	}
	return a.converse(ctx, consoleUserID, line).Answer, false
}
