package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var errNoInput = errors.New("no master password given")

// prompter запрашивает мастер-пароль. С терминала пароль читается без эха,
// из любого другого источника (pipe, тестовый reader) построчно.
type prompter struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
}

type readResult struct {
	password string
	err      error
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, out: out}
}

// masterPassword ждёт ввода пароля или отмены ctx. При отмене состояние
// терминала восстанавливается.
func (p *prompter) masterPassword(ctx context.Context) (string, error) {
	fmt.Fprint(p.out, "Enter master password: ")
	if err := ctx.Err(); err != nil {
		fmt.Fprintln(p.out)
		return "", err
	}

	read := p.readLine
	restore := func() {}
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		if state, err := term.GetState(fd); err == nil {
			restore = func() { _ = term.Restore(fd, state) }
		}
		read = func() (string, error) {
			b, err := term.ReadPassword(fd)
			if err != nil {
				return "", fmt.Errorf("failed to read master password: %w", err)
			}
			return string(b), nil
		}
	}

	// При отмене горутина чтения остаётся висеть, процесс сразу завершается.
	done := make(chan readResult, 1)
	go func() {
		password, err := read()
		done <- readResult{password: password, err: err}
	}()

	select {
	case r := <-done:
		fmt.Fprintln(p.out)
		return r.password, r.err
	case <-ctx.Done():
		restore()
		fmt.Fprintln(p.out)
		return "", ctx.Err()
	}
}

func (p *prompter) readLine() (string, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.in)
	}
	line, err := p.reader.ReadString('\n')
	if errors.Is(err, io.EOF) && line == "" {
		return "", errNoInput
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read master password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
