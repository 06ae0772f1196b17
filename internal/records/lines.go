package records

import (
	"bufio"
	"errors"
	"io"
	"iter"
)

// LineReader yields the lines of an io.Reader, each with its terminator.
// A read failure ends iteration and is reported by Err.
type LineReader struct {
	r   *bufio.Reader
	err error
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReaderSize(r, 64*1024)}
}

// Lines returns a single-use sequence over the remaining lines.
func (lr *LineReader) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			line, err := lr.r.ReadString('\n')
			if line != "" && !yield(line) {
				return
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					lr.err = err
				}
				return
			}
		}
	}
}

// Err returns the first non-EOF read error.
func (lr *LineReader) Err() error {
	return lr.err
}
