package frame

import (
	"bytes"
	"errors"
	"io"
	"strings"
)

const readChunk = 4096

var (
	ErrLineTooLong     = errors.New("frame: line exceeds limit")
	ErrEmbeddedNewline = errors.New("frame: line contains newline")
	ErrReadBudget      = errors.New("frame: read attempts exhausted before newline")
)

// Limits constrains line decode memory use.
type Limits struct {
	MaxLineBytes int
}

func DefaultLimits() Limits {
	return Limits{
		MaxLineBytes: 1024 * 1024,
	}
}

// LineReader splits a byte stream into newline-terminated lines.
// Partial reads are buffered; several lines arriving in one read are
// returned one per call before the underlying reader is touched again.
type LineReader struct {
	r      io.Reader
	limits Limits
	buf    []byte
	chunk  []byte
}

func NewLineReader(r io.Reader, limits Limits) *LineReader {
	if limits.MaxLineBytes <= 0 {
		limits = DefaultLimits()
	}
	return &LineReader{
		r:      r,
		limits: limits,
		chunk:  make([]byte, readChunk),
	}
}

// ReadLine returns the next line without its terminator. A trailing
// carriage return is dropped. Bytes after the last newline at EOF are
// discarded and io.EOF is returned.
func (lr *LineReader) ReadLine() (string, error) {
	return lr.readLine(0)
}

// ReadLineWithin is ReadLine bounded to maxReads calls on the underlying reader.
func (lr *LineReader) ReadLineWithin(maxReads int) (string, error) {
	if maxReads <= 0 {
		maxReads = 1
	}
	return lr.readLine(maxReads)
}

// Buffered reports whether at least one complete line is already buffered.
func (lr *LineReader) Buffered() bool {
	return bytes.IndexByte(lr.buf, '\n') >= 0
}

func (lr *LineReader) readLine(maxReads int) (string, error) {
	reads := 0
	for {
		if idx := bytes.IndexByte(lr.buf, '\n'); idx >= 0 {
			if idx > lr.limits.MaxLineBytes {
				return "", ErrLineTooLong
			}
			line := string(lr.buf[:idx])
			lr.buf = lr.buf[idx+1:]
			if len(lr.buf) == 0 {
				lr.buf = nil
			}
			return strings.TrimSuffix(line, "\r"), nil
		}
		if len(lr.buf) > lr.limits.MaxLineBytes {
			return "", ErrLineTooLong
		}
		if maxReads > 0 && reads >= maxReads {
			return "", ErrReadBudget
		}
		n, err := lr.r.Read(lr.chunk)
		reads++
		if n > 0 {
			lr.buf = append(lr.buf, lr.chunk[:n]...)
			continue
		}
		if err != nil {
			return "", err
		}
	}
}

// WriteLine writes line followed by a newline terminator.
func WriteLine(w io.Writer, line string) error {
	if strings.ContainsRune(line, '\n') {
		return ErrEmbeddedNewline
	}
	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, '\n')
	_, err := w.Write(buf)
	return err
}
