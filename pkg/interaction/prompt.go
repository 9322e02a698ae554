// pkg/interaction/prompt.go

// Package interaction reads values from the operator's terminal. Prompts
// write to stderr so piped stdout stays clean for table and JSON output.
package interaction

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	cerr "github.com/cockroachdb/errors"
	"golang.org/x/term"
)

// PromptPassword reads a secret without echoing it.
func PromptPassword(prompt string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", cerr.Wrap(err, "read password")
	}
	return strings.TrimSpace(string(raw)), nil
}

// PromptInput reads one line, returning defaultVal on empty input.
func PromptInput(prompt, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(os.Stderr, "%s [%s]: ", prompt, defaultVal)
	} else {
		fmt.Fprintf(os.Stderr, "%s: ", prompt)
	}
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return defaultVal
	}
	return line
}

// Confirm asks a yes/no question, treating anything but y/yes as no.
func Confirm(prompt string) bool {
	answer := PromptInput(prompt+" (y/N)", "n")
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}
