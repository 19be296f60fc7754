package data

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
)

// span locates one record inside a session file.
type span struct {
	off int64
	n   int
}

// session is an open recording plus where each of its records lives.
type session struct {
	file  *os.File
	spans []span
}

// StreamLoader keeps recordings on disk and decodes a record only when it is
// asked for. Use it when a replay spans more sessions than fit in memory.
type StreamLoader struct {
	mu       sync.RWMutex
	sessions map[string]*session
	logger   *zap.Logger
}

var _ RecordLoader = (*StreamLoader)(nil)

func NewStreamLoader(path string, logger *zap.Logger) (*StreamLoader, error) {
	paths, err := jsonlFiles(path)
	if err != nil {
		return nil, err
	}

	l := &StreamLoader{
		sessions: make(map[string]*session, len(paths)),
		logger:   logger,
	}

	for _, p := range paths {
		sess, err := openSession(p)
		if err != nil {
			logger.Warn("skipping session file", zap.String("path", p), zap.Error(err))
			continue
		}
		if len(sess.spans) == 0 {
			sess.file.Close()
			continue
		}

		key := SeriesKey(p)
		l.sessions[key] = sess
		logger.Info("session indexed",
			zap.String("key", key),
			zap.Int("records", len(sess.spans)),
		)
	}

	if len(l.sessions) == 0 {
		return nil, fmt.Errorf("no records indexed from %s", path)
	}
	return l, nil
}

// openSession scans the file once and notes the span of every non-blank line.
func openSession(path string) (*session, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	sess := &session{file: file}
	var pos int64

	r := bufio.NewReader(file)
	for {
		line, err := r.ReadBytes('\n')
		if n := len(bytesTrimNewline(line)); n > 0 {
			sess.spans = append(sess.spans, span{off: pos, n: n})
		}
		pos += int64(len(line))

		if err == io.EOF {
			return sess, nil
		}
		if err != nil {
			file.Close()
			return nil, err
		}
	}
}

func bytesTrimNewline(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	if n := len(b); n > 0 && b[n-1] == '\r' {
		b = b[:n-1]
	}
	return b
}

// GetAtIndex reads with ReadAt, so concurrent callers never share a file cursor.
func (l *StreamLoader) GetAtIndex(ctx context.Context, key string, index int) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	sess, ok := l.sessions[key]
	if !ok {
		return nil, ErrNotFound
	}
	if index < 0 || index >= len(sess.spans) {
		return nil, ErrIndexOutOfBounds
	}

	sp := sess.spans[index]
	buf := make([]byte, sp.n)
	if _, err := sess.file.ReadAt(buf, sp.off); err != nil {
		return nil, fmt.Errorf("reading %s record %d: %w", key, index, err)
	}

	var rec Record
	if err := json.Unmarshal(buf, &rec); err != nil {
		return nil, fmt.Errorf("decoding %s record %d: %w", key, index, err)
	}
	return &rec, nil
}

func (l *StreamLoader) GetLength(key string) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	sess, ok := l.sessions[key]
	if !ok {
		return 0, ErrNotFound
	}
	return len(sess.spans), nil
}

func (l *StreamLoader) Keys() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sortedKeys(l.sessions)
}

// Close releases every session file. Later lookups report ErrNotFound.
func (l *StreamLoader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, sess := range l.sessions {
		if err := sess.file.Close(); err != nil {
			l.logger.Warn("closing session file", zap.String("key", key), zap.Error(err))
		}
	}
	l.sessions = nil
	return nil
}
