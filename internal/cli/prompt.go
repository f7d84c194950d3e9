package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/nora/internal/cli/formatter"
)

// prompter reads answers one line at a time. All reads of the command's
// input go through the same buffered reader.
type prompter struct {
	r *bufio.Reader
	w io.Writer
}

func newPrompter(r io.Reader, w io.Writer) *prompter {
	return &prompter{r: bufio.NewReader(r), w: w}
}

// ask prints label and returns the trimmed answer. ok is false once the
// input is exhausted.
func (p *prompter) ask(label string) (answer string, ok bool) {
	fmt.Fprintf(p.w, "%s %s ", formatter.StyleHeader.Render(label), formatter.Dim("›"))
	line, err := p.r.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.w)
		return "", false
	}
	return strings.TrimSpace(line), true
}

// choice lowercases an answer and keeps its first letter, so "Accept",
// "a" and "a " all read as "a".
func choice(answer string) string {
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return ""
	}
	return answer[:1]
}
