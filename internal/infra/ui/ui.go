// Where: cli/internal/infra/ui/ui.go
// What: UserInterface used by build-step workflows.
// Why: Keep workflows writing progress through one small surface.
package ui

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// KeyValue is a key/value pair rendered inside a block.
type KeyValue struct {
	Key   string
	Value any
}

// UserInterface exposes high-level output helpers used by workflows.
type UserInterface interface {
	Info(msg string)
	Step(msg string)
	Warn(msg string)
	Success(msg string)
	Block(emoji, title string, rows []KeyValue)
}

// NewBuildUI returns a UserInterface writing to out.
func NewBuildUI(out io.Writer, emojiEnabled bool) UserInterface {
	if out == nil {
		out = io.Discard
	}
	return buildUI{console: NewWithEmoji(out, emojiEnabled)}
}

// Discard returns a UserInterface that writes nothing.
func Discard() UserInterface {
	return NewBuildUI(io.Discard, false)
}

type buildUI struct {
	console *Console
}

func (b buildUI) Info(msg string) {
	b.console.Info(msg)
}

func (b buildUI) Step(msg string) {
	b.console.Step(msg)
}

func (b buildUI) Warn(msg string) {
	b.console.Warn(msg)
}

func (b buildUI) Success(msg string) {
	b.console.Success(msg)
}

func (b buildUI) Block(emoji, title string, rows []KeyValue) {
	b.console.BlockStart(emoji, title)
	for _, kv := range rows {
		b.console.Item(kv.Key, kv.Value)
	}
	b.console.BlockEnd()
}

// IsTerminal reports whether the file refers to a terminal device.
var IsTerminal = func(file *os.File) bool {
	if file == nil {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// DetectEmoji decides emoji output when neither --emoji nor --no-emoji was
// given: NO_EMOJI or TERM=dumb disable it, otherwise it follows whether out
// is a terminal.
func DetectEmoji(out io.Writer) bool {
	if strings.TrimSpace(os.Getenv("NO_EMOJI")) != "" {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv("TERM")), "dumb") {
		return false
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	return IsTerminal(file)
}
