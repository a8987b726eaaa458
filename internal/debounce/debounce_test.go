package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_CoalescesPerKey(t *testing.T) {
	d := New(30 * time.Millisecond)
	defer d.Stop()

	var last, runs atomic.Int64
	for i := range 5 {
		d.Do("a", func() {
			last.Store(int64(i))
			runs.Add(1)
		})
	}

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(4), last.Load())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int64(1), runs.Load())
	assert.Zero(t, d.Pending())
}

func TestDo_KeysAreIndependent(t *testing.T) {
	d := New(20 * time.Millisecond)
	defer d.Stop()

	var a, b atomic.Int64
	d.Do("a", func() { a.Add(1) })
	d.Do("b", func() { b.Add(1) })

	require.Eventually(t, func() bool { return a.Load() == 1 && b.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestCancel(t *testing.T) {
	d := New(20 * time.Millisecond)
	defer d.Stop()

	var runs atomic.Int64
	d.Do("a", func() { runs.Add(1) })
	assert.True(t, d.Cancel("a"))
	assert.False(t, d.Cancel("a"))

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, runs.Load())
}

func TestFlush_RunsPendingSynchronously(t *testing.T) {
	d := New(time.Hour)
	defer d.Stop()

	var runs atomic.Int64
	d.Do("a", func() { runs.Add(1) })
	d.Do("b", func() { runs.Add(10) })
	assert.Equal(t, 2, d.Pending())

	d.Flush()
	assert.Equal(t, int64(11), runs.Load())
	assert.Zero(t, d.Pending())

	d.Flush()
	assert.Equal(t, int64(11), runs.Load())
}

func TestStop_DisablesScheduling(t *testing.T) {
	d := New(10 * time.Millisecond)

	var runs atomic.Int64
	d.Do("a", func() { runs.Add(1) })
	d.Stop()
	d.Do("b", func() { runs.Add(1) })

	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, runs.Load())
	assert.Zero(t, d.Pending())
}
