// internal/output/ledger.go

// Package output persists the results of extraction: it plans deterministic
// download paths, fetches or transcodes media onto disk, and keeps the
// ledger of completed downloads that makes batch runs idempotent.
package output

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/valpere/MediaScrapexter/internal/utils"
)

// Ledger tracks completed downloads. Entries are keyed by the final path
// segment of the source URL, compared case-sensitively, and persisted as a
// newline-delimited file so the set survives restarts.
type Ledger struct {
	path string

	mu   sync.RWMutex
	keys map[string]struct{}
}

// LoadLedger reads the ledger at path. A missing file yields an empty
// ledger, not an error: the first run starts with nothing downloaded.
func LoadLedger(path string) (*Ledger, error) {
	l := &Ledger{
		path: path,
		keys: make(map[string]struct{}),
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("failed to open ledger %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		l.keys[utils.LastPathSegment(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger %s: %w", path, err)
	}
	return l, nil
}

// IsDownloaded reports whether sourceURL's file-name key is in the ledger.
func (l *Ledger) IsDownloaded(sourceURL string) bool {
	key := utils.LastPathSegment(sourceURL)
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.keys[key]
	return ok
}

// Append records sourceURL as downloaded, both in memory and on disk. It is
// called only after the media file has been fully written.
func (l *Ledger) Append(sourceURL string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := utils.LastPathSegment(sourceURL)
	if _, ok := l.keys[key]; ok {
		return nil
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open ledger %s for append: %w", l.path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, sourceURL); err != nil {
		return fmt.Errorf("failed to append to ledger %s: %w", l.path, err)
	}
	l.keys[key] = struct{}{}
	return nil
}

// Len returns the number of recorded downloads.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.keys)
}
