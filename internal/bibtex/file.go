package bibtex

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// BackupSuffix is appended to the bibliography path for the previous version.
const BackupSuffix = ".backup"

// ErrFileNotFound is returned when the bibliography file does not exist.
var ErrFileNotFound = errors.New("bibliography file not found")

func BackupPath(path string) string {
	return path + BackupSuffix
}

// Backup copies path next to itself with BackupSuffix, keeping its mode.
// A missing file is not an error; the returned bool reports whether a backup
// was written.
func Backup(path string) (bool, error) {
	src, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("opening %s: %w", path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}

	dst, err := os.OpenFile(BackupPath(path), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return false, fmt.Errorf("creating backup: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return false, fmt.Errorf("copying backup: %w", err)
	}
	if err := dst.Close(); err != nil {
		return false, fmt.Errorf("closing backup: %w", err)
	}
	return true, os.Chtimes(BackupPath(path), info.ModTime(), info.ModTime())
}

// Header returns the front matter and generated-file comment placed above the
// entries.
func Header(now time.Time, scholarID string) string {
	return fmt.Sprintf(`---
---

@comment{
  This file is automatically generated from Google Scholar.
  Last updated: %s
  Scholar ID: %s

  DO NOT EDIT MANUALLY - Changes will be overwritten on next update.
  To update: run scholarbib update
}
`, now.Format("2006-01-02 15:04:05"), scholarID)
}

// Assemble joins a header and entries with one blank line between every part
// and a single trailing newline.
func Assemble(header string, entries []string) string {
	header = strings.TrimRight(header, "\r\n")
	body := strings.Join(entries, "\n\n")
	switch {
	case header == "" && body == "":
		return ""
	case header == "":
		return body + "\n"
	case body == "":
		return header + "\n"
	}
	return header + "\n\n" + body + "\n"
}

// WriteFile writes content to path, creating the parent directory.
func WriteFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
