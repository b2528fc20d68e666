// Package input obtains the target page URL from the user.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompt is printed before reading the URL interactively
const Prompt = "Enter the web page URL: "

// ErrNoURL is returned when the input ends without a URL
var ErrNoURL = errors.New("no URL entered")

// ReadURL prints the prompt to w and reads one line from r.
// Surrounding whitespace is trimmed; the URL itself is not validated.
func ReadURL(r io.Reader, w io.Writer) (string, error) {
	if _, err := io.WriteString(w, Prompt); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read URL: %w", err)
	}

	u := strings.TrimSpace(line)
	if u == "" {
		return "", ErrNoURL
	}
	return u, nil
}

// Resolve returns the first non-empty candidate, falling back to the prompt.
func Resolve(r io.Reader, w io.Writer, candidates ...string) (string, error) {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c, nil
		}
	}
	return ReadURL(r, w)
}
