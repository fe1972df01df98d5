// Package framer accumulates bytes read off a TCP connection and emits
// one raw SMPP PDU at a time, delimited by the 4-byte big-endian
// command_length prefix every PDU carries.
package framer

import (
	"encoding/binary"
	"fmt"
)

const (
	headerLen = 16
	// DefaultMaxFrameSize bounds a single PDU's command_length, guarding
	// against a peer claiming an absurd frame size.
	DefaultMaxFrameSize = 64 * 1024
)

// FrameError reports a malformed or oversize command_length prefix. It is
// connection-fatal: the caller should close the socket.
type FrameError struct {
	Length uint32
	Max    uint32
}

func (e FrameError) Error() string {
	return fmt.Sprintf("smpp/framer: invalid command_length %d (max %d)", e.Length, e.Max)
}

// Framer buffers partial reads and pops out whole PDUs.
type Framer struct {
	buf         []byte
	maxFrameLen uint32
}

// New creates a Framer. maxFrameLen of 0 uses DefaultMaxFrameSize.
func New(maxFrameLen uint32) *Framer {
	if maxFrameLen == 0 {
		maxFrameLen = DefaultMaxFrameSize
	}
	return &Framer{maxFrameLen: maxFrameLen}
}

// Feed appends newly read bytes to the buffer. It tolerates arbitrary TCP
// chunking: a call may deliver less than one PDU, exactly one, or several.
func (f *Framer) Feed(b []byte) {
	f.buf = append(f.buf, b...)
}

// TryPop returns the next complete PDU's raw bytes if the buffer holds a
// full frame. ok is false if more bytes are needed; it is never true at
// the same time as a non-nil error. The returned slice is a copy, safe to
// retain after the internal buffer is compacted by a later Feed/TryPop.
func (f *Framer) TryPop() (raw []byte, ok bool, err error) {
	if len(f.buf) < 4 {
		return nil, false, nil
	}
	length := binary.BigEndian.Uint32(f.buf[:4])
	if length < headerLen || length > f.maxFrameLen {
		return nil, false, FrameError{Length: length, Max: f.maxFrameLen}
	}
	if uint32(len(f.buf)) < length {
		return nil, false, nil
	}
	raw = make([]byte, length)
	copy(raw, f.buf[:length])
	rest := make([]byte, len(f.buf)-int(length))
	copy(rest, f.buf[length:])
	f.buf = rest
	return raw, true, nil
}

// Reset discards any buffered bytes.
func (f *Framer) Reset() {
	f.buf = nil
}
