package exceptions

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Rewrite applies an edit to the text of an exceptions file.
//
// Lines whose identifier is in remove are dropped; every other line,
// including comments and blank lines, is kept verbatim and in order. One line
// per add entry is appended. If the edit is empty the text is returned
// unchanged. A trailing newline is kept, and is always present after an
// addition. Added lines use CRLF endings when the text already does.
func Rewrite(text string, remove, add []string) string {
	if len(remove) == 0 && len(add) == 0 {
		return text
	}

	drop := make(map[string]struct{}, len(remove))
	for _, id := range remove {
		drop[StripLine(id)] = struct{}{}
	}

	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}
	terminated := strings.HasSuffix(text, "\n")
	if terminated {
		lines = lines[:len(lines)-1]
	}

	out := make([]string, 0, len(lines)+len(add))
	for _, line := range lines {
		if id := StripLine(line); id != "" {
			if _, ok := drop[id]; ok {
				continue
			}
		}
		out = append(out, line)
	}
	if len(add) > 0 {
		if strings.Contains(text, "\r\n") {
			if n := len(out); n > 0 && !strings.HasSuffix(out[n-1], "\r") {
				out[n-1] += "\r"
			}
			for _, id := range add {
				out = append(out, id+"\r")
			}
		} else {
			out = append(out, add...)
		}
	}

	result := strings.Join(out, "\n")
	if len(out) > 0 && (terminated || len(add) > 0) {
		result += "\n"
	}
	return result
}

// WriteFile replaces the file at path with text.
//
// The content is written to a temporary file in the same directory, synced,
// and renamed over path, so a reader sees either the old file or the new one.
// An existing file's permissions are kept.
func WriteFile(path, text string) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write exceptions file: %w", err)
	}
	tmpName := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(text); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write exceptions file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write exceptions file: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write exceptions file: close: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("write exceptions file: chmod: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("write exceptions file: rename: %w", err)
	}
	renamed = true
	return nil
}
