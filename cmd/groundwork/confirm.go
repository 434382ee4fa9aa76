package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// confirmAction prompts the user for confirmation before a mutating
// operation. Returns true when --yes was given or the user answers y.
func confirmAction(prompt string) bool {
	return confirmActionFrom(os.Stdin, os.Stdout, prompt)
}

// confirmActionFrom is the testable core of confirmAction.
func confirmActionFrom(in io.Reader, out io.Writer, prompt string) bool {
	if yesFlag {
		return true
	}

	fmt.Fprintf(out, "%s [y/N]: ", prompt)

	reader := bufio.NewReader(in)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
