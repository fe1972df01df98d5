package framer_test

import (
	"encoding/binary"
	"testing"

	"github.com/guyt101z/vumi-smpp-client/internal/framer"
	"github.com/stretchr/testify/assert"
)

func pduBytes(commandID uint32, body []byte) []byte {
	out := make([]byte, 16+len(body))
	binary.BigEndian.PutUint32(out[:4], uint32(16+len(body)))
	binary.BigEndian.PutUint32(out[4:8], commandID)
	binary.BigEndian.PutUint32(out[8:12], 0)
	binary.BigEndian.PutUint32(out[12:16], 1)
	copy(out[16:], body)
	return out
}

func TestTryPopWholeFrame(t *testing.T) {
	f := framer.New(0)
	b := pduBytes(0x15, nil)
	f.Feed(b)
	raw, ok, err := f.TryPop()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, b, raw)

	_, ok, err = f.TryPop()
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestFeedSplitAtEveryOffset(t *testing.T) {
	b := pduBytes(0x4, []byte("hello world"))
	for i := 0; i <= len(b); i++ {
		f := framer.New(0)
		f.Feed(b[:i])
		raw, ok, err := f.TryPop()
		if i < len(b) {
			assert.False(t, ok, "offset %d", i)
			assert.NoError(t, err)
			f.Feed(b[i:])
			raw, ok, err = f.TryPop()
		}
		assert.NoError(t, err, "offset %d", i)
		assert.True(t, ok, "offset %d", i)
		assert.Equal(t, b, raw, "offset %d", i)
	}
}

func TestTryPopMultipleFramesInOneFeed(t *testing.T) {
	f := framer.New(0)
	a := pduBytes(0x15, nil)
	b := pduBytes(0x4, []byte("x"))
	f.Feed(append(append([]byte{}, a...), b...))

	raw, ok, err := f.TryPop()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, a, raw)

	raw, ok, err = f.TryPop()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, b, raw)

	_, ok, err = f.TryPop()
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestTryPopRejectsTooShort(t *testing.T) {
	f := framer.New(0)
	bad := make([]byte, 16)
	binary.BigEndian.PutUint32(bad[:4], 8)
	f.Feed(bad)
	_, ok, err := f.TryPop()
	assert.False(t, ok)
	assert.Error(t, err)
	var fe framer.FrameError
	assert.ErrorAs(t, err, &fe)
}

func TestTryPopRejectsOversize(t *testing.T) {
	f := framer.New(32)
	bad := make([]byte, 16)
	binary.BigEndian.PutUint32(bad[:4], 1000)
	f.Feed(bad)
	_, ok, err := f.TryPop()
	assert.False(t, ok)
	assert.Error(t, err)
}
