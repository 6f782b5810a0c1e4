package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zhouzirui/ai-code-helper/client/internal/model/locale"
	"github.com/zhouzirui/ai-code-helper/client/internal/service/chat"
)

func (a *app) repl(ctx context.Context) error {
	a.banner()

	scanner := bufio.NewScanner(a.in)
	for {
		fmt.Fprint(a.out, userPrompt)
		if !scanner.Scan() {
			// EOF or error
			fmt.Fprintln(a.out)
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch {
		case input == "":
			continue
		case input == "/exit":
			return nil
		case input == "/lang" || strings.HasPrefix(input, "/lang "):
			a.switchLocale(ctx, strings.TrimSpace(strings.TrimPrefix(input, "/lang")))
			continue
		}

		a.turn(ctx, input)
		if ctx.Err() != nil {
			return nil
		}
	}
	return scanner.Err()
}

func (a *app) banner() {
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "  %s\n", titleStyle.Render(a.i18n.Localize(locale.KeyTitle, nil)))
	fmt.Fprintf(a.out, "  %s\n\n", dimStyle.Render(a.i18n.Localize(locale.KeySubtitle, nil)))
	fmt.Fprintf(a.out, "  %s\n", a.i18n.Localize(locale.KeyWelcome, nil))
	fmt.Fprintf(a.out, "  %s\n\n", dimStyle.Render(a.i18n.Localize(locale.KeyPlaceholder, nil)+"  (/lang <code>, /exit)"))
}

func (a *app) switchLocale(ctx context.Context, code string) {
	if code != "" {
		a.i18n.SetLocale(ctx, code)
	}
	fmt.Fprintf(a.out, "  %s: %s %s\n",
		a.i18n.Localize(locale.KeyLanguage, nil),
		a.i18n.Locale(),
		dimStyle.Render("("+strings.Join(a.i18n.Locales(), ", ")+")"),
	)
}

// turn streams one answer to the terminal. The thinking marker stays until
// the first chunk replaces it; a turn that fails before any chunk shows the
// localized error line instead.
func (a *app) turn(ctx context.Context, message string) {
	fmt.Fprint(a.out, assistantPrompt+dimStyle.Render(a.i18n.Localize(locale.KeyThinking, nil)))

	var (
		received bool
		turnErr  error
	)
	stream := a.client.ChatWithSSE(ctx, a.currentMemoryID(ctx), message, chat.Handlers{
		OnChunk: func(text string) {
			if !received {
				received = true
				fmt.Fprint(a.out, clearLine+assistantPrompt)
			}
			fmt.Fprint(a.out, text)
		},
		OnError: func(err error) {
			turnErr = err
		},
	})
	<-stream.Done()

	switch {
	case ctx.Err() != nil:
		fmt.Fprintln(a.out)
	case !received:
		fmt.Fprintf(a.out, "%s%s%s\n", clearLine, assistantPrompt, failStyle.Render(a.i18n.Localize(locale.KeyError, nil)))
		a.logger.Debug("[cli] turn failed", "error", turnErr)
	case turnErr != nil && !errors.Is(turnErr, chat.ErrStreamClosed):
		fmt.Fprintf(a.out, "\n  %s %v\n", failMark, turnErr)
	default:
		fmt.Fprintln(a.out)
	}
}
