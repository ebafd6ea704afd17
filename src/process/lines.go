package process

import (
	"bytes"
	"strings"
	"sync"
)

// A LineBuffer is an io.Writer that splits what is written to it into lines, however the
// writes happen to be chunked. It is safe for concurrent use.
type LineBuffer struct {
	mutex   sync.Mutex
	lines   []string
	partial bytes.Buffer
	size    int
}

// Write implements io.Writer. It never fails.
func (lb *LineBuffer) Write(b []byte) (int, error) {
	lb.mutex.Lock()
	defer lb.mutex.Unlock()
	n := len(b)
	lb.size += n
	for len(b) > 0 {
		i := bytes.IndexByte(b, '\n')
		if i < 0 {
			lb.partial.Write(b)
			break
		}
		lb.partial.Write(b[:i])
		lb.lines = append(lb.lines, strings.TrimSuffix(lb.partial.String(), "\r"))
		lb.partial.Reset()
		b = b[i+1:]
	}
	return n, nil
}

// Lines returns all the lines written so far, including an unterminated final one.
func (lb *LineBuffer) Lines() []string {
	lb.mutex.Lock()
	defer lb.mutex.Unlock()
	ret := append([]string(nil), lb.lines...)
	if lb.partial.Len() > 0 {
		ret = append(ret, strings.TrimSuffix(lb.partial.String(), "\r"))
	}
	return ret
}

// First returns the first line, or the empty string if nothing has been written.
func (lb *LineBuffer) First() string {
	if lines := lb.Lines(); len(lines) > 0 {
		return lines[0]
	}
	return ""
}

// Size returns the total number of bytes written.
func (lb *LineBuffer) Size() int {
	lb.mutex.Lock()
	defer lb.mutex.Unlock()
	return lb.size
}
