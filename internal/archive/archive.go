// Package archive moves the pronunciation clips of past sessions out of the
// way so a new session starts with an empty audio directory.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ArchiveAudio moves audioDir to <parent>/archive/audio-<timestamp> and
// returns the new path.
func ArchiveAudio(audioDir string) (string, error) {
	return archiveAt(audioDir, time.Now())
}

func archiveAt(audioDir string, now time.Time) (string, error) {
	info, err := os.Stat(audioDir)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("audio directory does not exist: %s", audioDir)
	}
	if err != nil {
		return "", fmt.Errorf("failed to inspect audio directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", audioDir)
	}

	archiveDir := filepath.Join(filepath.Dir(audioDir), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	archivePath := filepath.Join(archiveDir, "audio-"+now.Format("20060102-150405"))
	if _, err := os.Stat(archivePath); err == nil {
		// same second as a previous archive
		archivePath = filepath.Join(archiveDir, "audio-"+now.Format("20060102-150405.000000"))
	}

	if err := os.Rename(audioDir, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive audio directory: %w", err)
	}
	return archivePath, nil
}
