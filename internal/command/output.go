// Where: cli/internal/command/output.go
// What: Output helpers for command adapters.
// Why: Centralize UserInterface construction and emoji selection.
package command

import (
	"io"

	"github.com/poruru/f3asm/cli/internal/infra/ui"
)

func newUI(out io.Writer, cli CLI) ui.UserInterface {
	return ui.NewBuildUI(out, emojiEnabled(out, cli))
}

func emojiEnabled(out io.Writer, cli CLI) bool {
	switch {
	case cli.NoEmoji:
		return false
	case cli.Emoji:
		return true
	default:
		return ui.DetectEmoji(out)
	}
}
