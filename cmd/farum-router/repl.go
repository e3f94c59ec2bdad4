package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/PabloGalante/farum-router/internal/app/classification"
	"github.com/PabloGalante/farum-router/internal/domain"
)

const prompt = ">>> "

type classifier interface {
	Classify(ctx context.Context, utterance string) (*classification.Result, error)
}

func runREPL(ctx context.Context) error {
	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return replLoop(ctx, a.svc, os.Stdin, color.Output)
}

// readLines scans in on its own goroutine so a pending read never blocks
// cancellation. errc receives exactly one value before lines is closed.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		errc <- scanner.Err()
	}()

	return lines, errc
}

// replLoop reads one utterance per line and prints its directives until
// an exit directive, EOF, or ctx is done.
func replLoop(ctx context.Context, svc classifier, in io.Reader, out io.Writer) error {
	vocab := domain.DefaultVocabulary()
	keyword := color.New(color.FgCyan, color.Bold).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines, errc := readLines(ctx, in)

	for {
		fmt.Fprint(out, prompt)

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return <-errc
			}
			line = strings.TrimSpace(l)
		}

		if line == "" {
			continue
		}

		res, err := svc.Classify(ctx, line)
		if err != nil {
			var unresolved *domain.UnresolvedError
			switch {
			case errors.As(err, &unresolved):
				fmt.Fprintln(out, warn(fmt.Sprintf("could not resolve that after %d attempts, try rephrasing", unresolved.Attempts)))
			case errors.Is(err, context.Canceled):
				return err
			default:
				fmt.Fprintln(out, fail("error: "+err.Error()))
			}
			continue
		}

		if len(res.Directives) == 0 {
			fmt.Fprintln(out, warn("no directives recognized"))
			continue
		}

		exit := false
		for _, d := range res.Directives {
			kw, arg, _ := d.Split(vocab)
			fmt.Fprintf(out, "%s %s\n", keyword(string(kw)), arg)
			if kw == domain.KeywordExit {
				exit = true
			}
		}
		if exit {
			return nil
		}
	}
}
