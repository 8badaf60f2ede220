package tool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SketchBoard/internal/protocol"
)

func TestBatcherZeroIntervalSendsEachVertex(t *testing.T) {
	out := &recorder{}
	b := NewBatcher(out, 0)
	b.Add(pt(1, 2))
	b.Add(pt(3, 4))
	assert.Equal(t, 0, b.Pending())
	require.Len(t, out.messages(), 2)
	assert.Equal(t, []float64{3, 4}, out.last().(*protocol.ContinueStroke).Vertices)
}

func TestBatcherFlushesOnTimer(t *testing.T) {
	out := &recorder{}
	b := NewBatcher(out, 5*time.Millisecond)
	defer b.Close()
	b.Add(pt(1, 2))
	b.Add(pt(3, 4))

	assert.Eventually(t, func() bool { return len(out.messages()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []float64{1, 2, 3, 4}, out.last().(*protocol.ContinueStroke).Vertices)
}

func TestBatcherBeginFlushesPreviousStroke(t *testing.T) {
	out := &recorder{}
	b := NewBatcher(out, time.Hour)
	defer b.Close()
	b.Add(pt(1, 1))
	b.Begin(&protocol.StartStroke{X: 9, Y: 9})
	assert.Equal(t, []protocol.Type{protocol.TypeContinueStroke, protocol.TypeStartStroke}, out.types())
}

func TestBatcherSetIntervalFlushesAndRestarts(t *testing.T) {
	out := &recorder{}
	b := NewBatcher(out, time.Hour)
	defer b.Close()
	b.Add(pt(1, 1))
	b.SetInterval(0)
	assert.Len(t, out.messages(), 1)
	assert.Equal(t, time.Duration(0), b.Interval())

	b.SetInterval(-time.Second)
	assert.Equal(t, time.Duration(0), b.Interval())
}

func TestBatcherReplaceLastAfterFlushMovesVertex(t *testing.T) {
	out := &recorder{}
	b := NewBatcher(out, time.Hour)
	defer b.Close()
	b.Add(pt(1, 1))
	b.Flush()
	b.ReplaceLast(pt(2, 2))
	mv, ok := out.last().(*protocol.MoveLastVertex)
	require.True(t, ok)
	assert.Equal(t, 2.0, mv.X)
}

func TestQueueIsFIFO(t *testing.T) {
	var q Queue[int]
	for i := 1; i <= 3; i++ {
		q.Push(i)
	}
	head, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, 1, head)
	for i := 1; i <= 3; i++ {
		v, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok = q.Pop()
	assert.False(t, ok)
}
