// Package wire imposes newline framing on the raw byte stream and renders
// outbound messages to their text form. The transport itself is unframed,
// so partial reads are reassembled here before any classification happens.
package wire

import (
	"bufio"
	"bytes"
	"net"
	"time"

	"chat-relay/errors"
)

// LineReader reads newline-terminated UTF-8 lines from a connection.
// Bytes received before a deadline expires are retained, so a line split
// across several reads (or several deadline windows) is reassembled intact.
// Not safe for concurrent use; the owning session is the only reader.
type LineReader struct {
	conn    net.Conn
	r       *bufio.Reader
	pending []byte
	maxLen  int
}

func NewLineReader(conn net.Conn, maxLen int) *LineReader {
	return &LineReader{
		conn:   conn,
		r:      bufio.NewReader(conn),
		maxLen: maxLen,
	}
}

// ReadLine blocks until one complete line arrives, the deadline expires,
// or the peer disconnects. The returned line has its trailing newline and
// optional carriage return stripped. A deadline expiry surfaces as a
// net.Error with Timeout() true (os.ErrDeadlineExceeded); accumulated
// partial input survives it. A line longer than maxLen returns
// errors.ErrLineTooLong, which is a protocol violation.
func (lr *LineReader) ReadLine(deadline time.Time) (string, error) {
	for {
		if i := bytes.IndexByte(lr.pending, '\n'); i >= 0 {
			if lr.maxLen > 0 && i > lr.maxLen {
				return "", errors.ErrLineTooLong
			}
			line := trimEOL(lr.pending[:i])
			rest := lr.pending[i+1:]
			lr.pending = append(lr.pending[:0:0], rest...)
			return line, nil
		}
		if lr.maxLen > 0 && len(lr.pending) > lr.maxLen {
			return "", errors.ErrLineTooLong
		}
		if err := lr.conn.SetReadDeadline(deadline); err != nil {
			return "", err
		}
		frag, err := lr.r.ReadSlice('\n')
		lr.pending = append(lr.pending, frag...)
		if err != nil && err != bufio.ErrBufferFull {
			// Timeout, reset or EOF. Whatever was read stays pending.
			return "", err
		}
	}
}

func trimEOL(b []byte) string {
	return string(bytes.TrimRight(b, "\r"))
}
