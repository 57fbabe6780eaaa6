package gateways

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// fileLogSource follows a log file the way `tail -f` does.
// It watches the parent directory so creation and rotation are noticed.
type fileLogSource struct {
	name    string
	path    string
	backlog int
}

// NewFileLogSource creates a source that emits the last backlog lines of path
// and then every line appended to it
func NewFileLogSource(name, path string, backlog int) *fileLogSource {
	return &fileLogSource{name: name, path: path, backlog: backlog}
}

// Name returns the source label
func (s *fileLogSource) Name() string {
	return s.name
}

// Stream sends lines until ctx is done
func (s *fileLogSource) Stream(ctx context.Context, lines chan<- string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch init failed: %w", err)
	}
	//nolint:errcheck // Defer close on watcher
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(s.path), err)
	}

	t := &tailState{path: s.path}
	//nolint:errcheck // Defer close on read-only file
	defer t.close()

	initial, err := t.open(s.backlog)
	if err != nil {
		return err
	}
	if err := send(ctx, lines, initial); err != nil {
		return err
	}

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}

			var newLines []string
			switch {
			case ev.Has(fsnotify.Create):
				t.close()
				newLines, err = t.open(0)
				if err == nil && t.f != nil {
					// a recreated file is read from its start
					newLines, err = t.readFrom(0)
				}
			case ev.Has(fsnotify.Write):
				newLines, err = t.readNew()
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				t.close()
			}
			if err != nil {
				return err
			}
			if err := send(ctx, lines, newLines); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		}
	}
}

func send(ctx context.Context, out chan<- string, lines []string) error {
	for _, line := range lines {
		select {
		case out <- line:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// tailState tracks the open file, the read offset and an unterminated line
type tailState struct {
	path    string
	f       *os.File
	offset  int64
	partial []byte
}

// open opens the file if present, positions at its end and returns up to
// backlog trailing lines
func (t *tailState) open(backlog int) ([]string, error) {
	//nolint:gosec // G304: log file path comes from configuration
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	t.f = f
	t.partial = nil

	var last []string
	if backlog > 0 {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			last = append(last, scanner.Text())
			if len(last) > backlog {
				last = last[1:]
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read log file: %w", err)
		}
	}

	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to seek log file: %w", err)
	}
	t.offset = end
	return last, nil
}

func (t *tailState) readFrom(offset int64) ([]string, error) {
	t.offset = offset
	t.partial = nil
	return t.readNew()
}

// readNew returns complete lines appended since the last read.
// A file that shrank is treated as truncated and read from the start.
func (t *tailState) readNew() ([]string, error) {
	if t.f == nil {
		if _, err := t.open(0); err != nil || t.f == nil {
			return nil, err
		}
		t.offset = 0
	}

	info, err := t.f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}
	if info.Size() < t.offset {
		t.offset = 0
		t.partial = nil
	}

	if _, err := t.f.Seek(t.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek log file: %w", err)
	}
	data, err := io.ReadAll(t.f)
	if err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}
	t.offset += int64(len(data))

	data = append(t.partial, data...)
	idx := bytes.LastIndexByte(data, '\n')
	if idx < 0 {
		t.partial = data
		return nil, nil
	}
	t.partial = append([]byte(nil), data[idx+1:]...)

	var out []string
	for _, line := range strings.Split(string(data[:idx]), "\n") {
		out = append(out, strings.TrimRight(line, "\r"))
	}
	return out, nil
}

func (t *tailState) close() error {
	if t.f == nil {
		return nil
	}
	err := t.f.Close()
	t.f = nil
	return err
}
