package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// Input reads prompted answers from the user.
type Input struct {
	reader *bufio.Reader
	out    io.Writer
	fd     int
}

// NewInput reads lines from r and writes prompts to w. Passwords are read
// from the terminal without echo when stdin is one.
func NewInput(r io.Reader, w io.Writer) *Input {
	return &Input{reader: bufio.NewReader(r), out: w, fd: int(os.Stdin.Fd())}
}

// readLine returns the next line without its line ending. A final line
// without a newline is returned before io.EOF.
func (in *Input) readLine() (string, error) {
	line, err := in.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Line prints prompt and reads one trimmed line.
func (in *Input) Line(prompt string) (string, error) {
	if _, err := fmt.Fprintf(in.out, "%s: ", prompt); err != nil {
		return "", err
	}
	line, err := in.readLine()
	return strings.TrimSpace(line), err
}

// Default is Line with a current value kept when the answer is empty.
func (in *Input) Default(prompt, current string) (string, error) {
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]", prompt, current)
	}
	v, err := in.Line(prompt)
	if err != nil {
		return "", err
	}
	if v == "" {
		return current, nil
	}
	return v, nil
}

// Password prints prompt and reads a password. On a terminal the input is
// not echoed.
func (in *Input) Password(prompt string) (string, error) {
	if !isTerminal(in.fd) {
		return in.Line(prompt)
	}
	if _, err := fmt.Fprintf(in.out, "%s: ", prompt); err != nil {
		return "", err
	}
	pw, err := readPassword(in.fd)
	fmt.Fprintln(in.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
