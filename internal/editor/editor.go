// Package editor opens text in the user's editor.
package editor

import (
	"os"
	"os/exec"
)

// Editor handles editor resolution and invocation.
type Editor struct {
	configured string
}

// New creates an Editor. configured is the editor from the config file and
// may be empty.
func New(configured string) *Editor {
	return &Editor{configured: configured}
}

// Resolve returns the editor command to use.
// Order: config file > $VISUAL > $EDITOR > vi
func (e *Editor) Resolve() string {
	if e.configured != "" {
		return e.configured
	}
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if editor := os.Getenv(env); editor != "" {
			return editor
		}
	}
	return "vi"
}

// Edit opens the editor on a temp file holding content and returns the
// edited content. pattern names the temp file, as in os.CreateTemp.
func (e *Editor) Edit(content, pattern string) (string, error) {
	tmpFile, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.WriteString(content); err != nil {
		tmpFile.Close()
		return "", err
	}
	tmpFile.Close()

	cmd := exec.Command(e.Resolve(), tmpPath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", err
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", err
	}
	return string(edited), nil
}
