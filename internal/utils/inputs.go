package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoInput is returned when the reader is exhausted.
var ErrNoInput = errors.New("no input")

// Prompter reads line-oriented answers from a single reader. A single
// scanner is shared across prompts so buffered input is never lost between
// questions.
type Prompter struct {
	scanner *bufio.Scanner
	writer  io.Writer
}

// NewPrompter creates a prompter over reader/writer.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if writer == nil {
		writer = io.Discard
	}
	return &Prompter{
		scanner: bufio.NewScanner(reader),
		writer:  writer,
	}
}

// ReadString prints prompt and returns the trimmed answer.
func (p *Prompter) ReadString(prompt string) (string, error) {
	if prompt != "" {
		_, _ = fmt.Fprint(p.writer, prompt)
	}
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", ErrNoInput
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// ReadYesNo asks once. "y"/"yes" and Portuguese "s"/"sim" mean yes; any
// other answer means no.
func (p *Prompter) ReadYesNo(prompt string) (bool, error) {
	answer, err := p.ReadString(prompt + " (y/n): ")
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes", "s", "sim":
		return true, nil
	}
	return false, nil
}

// PromptYesNoWithReader prompts for yes/no with custom reader/writer for testing.
func PromptYesNoWithReader(prompt string, reader io.Reader, writer io.Writer) bool {
	ok, err := NewPrompter(reader, writer).ReadYesNo(prompt)
	if err != nil {
		return false
	}
	return ok
}
