package handle

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapAndRead(t *testing.T) {
	m := NewManager()
	payload := []byte("narration audio bytes")
	h := m.Wrap(payload)

	r, err := h.Acquire()
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	require.NoError(t, r.Close())

	assert.Equal(t, 1, m.Live())
	h.Release()
	assert.Equal(t, 0, m.Live())
}

func TestReleaseIsIdempotent(t *testing.T) {
	m := NewManager()
	h := m.Wrap([]byte{1, 2, 3})

	h.Release()
	h.Release()
	h.Release()

	// Freed exactly once: the live count must not go negative.
	assert.Equal(t, 0, m.Live())
}

func TestReleaseDeferredWhileReaderOpen(t *testing.T) {
	m := NewManager()
	payload := bytes.Repeat([]byte{0x55}, 4096)
	h := m.Wrap(payload)

	r, err := h.Acquire()
	require.NoError(t, err)

	// Release while the consumer is still attached: the payload must
	// survive until the reader closes.
	h.Release()
	assert.Equal(t, 1, m.Live())

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	require.NoError(t, r.Close())
	assert.Equal(t, 0, m.Live())
	assert.Equal(t, 0, h.Len())
}

func TestAcquireAfterRelease(t *testing.T) {
	m := NewManager()
	h := m.Wrap([]byte{1})
	h.Release()

	_, err := h.Acquire()
	assert.ErrorIs(t, err, ErrReleased)
}

func TestReaderCloseIsIdempotent(t *testing.T) {
	m := NewManager()
	h := m.Wrap([]byte{1, 2})

	r, err := h.Acquire()
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	h.Release()
	assert.Equal(t, 0, m.Live())
}

func TestSlotSupersession(t *testing.T) {
	m := NewManager()

	t.Run("adopt releases the previous handle", func(t *testing.T) {
		var slot Slot
		a := m.Wrap([]byte("asset A"))
		b := m.Wrap([]byte("asset B"))

		slot.Adopt(a)
		slot.Adopt(b)

		// A was superseded and must be released; B is still owned.
		_, err := a.Acquire()
		assert.ErrorIs(t, err, ErrReleased)
		_, err = b.Acquire()
		assert.NoError(t, err)
		assert.Same(t, b, slot.Current())
	})

	t.Run("supersession does not break an in-flight read", func(t *testing.T) {
		var slot Slot
		a := m.Wrap([]byte("asset A"))
		slot.Adopt(a)

		r, err := a.Acquire()
		require.NoError(t, err)

		before := m.Live()
		slot.Adopt(m.Wrap([]byte("asset B")))

		// A is released but not freed until the reader detaches.
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, []byte("asset A"), got)

		require.NoError(t, r.Close())
		assert.Equal(t, before-1, m.Live())
	})

	t.Run("close releases and is idempotent", func(t *testing.T) {
		var slot Slot
		h := m.Wrap([]byte{9})
		slot.Adopt(h)

		slot.Close()
		slot.Close()

		_, err := h.Acquire()
		assert.ErrorIs(t, err, ErrReleased)
		assert.Nil(t, slot.Current())
	})

	t.Run("adopting the same handle twice does not release it", func(t *testing.T) {
		var slot Slot
		h := m.Wrap([]byte{7})
		slot.Adopt(h)
		slot.Adopt(h)

		_, err := h.Acquire()
		assert.NoError(t, err)
		slot.Close()
	})
}
