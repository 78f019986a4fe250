package utils

import (
	"fmt"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
)

// PrintHighlighted writes source to stdout with terminal syntax highlighting,
// falling back to plain output when the highlighter fails.
func PrintHighlighted(source string, language string, theme string) {
	if err := quick.Highlight(os.Stdout, source, language, "terminal256", theme); err != nil {
		fmt.Print(source)
	}
}
