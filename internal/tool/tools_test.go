package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SketchBoard/internal/protocol"
	"SketchBoard/internal/state"
)

func TestEraserRemovesFirstHitOnly(t *testing.T) {
	f := newFixture()
	a := f.stroke(1, pt(0, 0), pt(20, 0))
	b := f.stroke(2, pt(10, -10), pt(10, 10))
	c := f.stroke(3, pt(100, 100), pt(120, 100))
	require.NoError(t, f.box.SetActive(KindEraser))

	f.box.Start(at(10, 0))
	f.box.Continue(at(10, 0))

	_, okA := f.env.Sketch.Get(a.ID())
	_, okB := f.env.Sketch.Get(b.ID())
	_, okC := f.env.Sketch.Get(c.ID())
	assert.False(t, okA)
	assert.True(t, okB)
	assert.True(t, okC)
	assert.Equal(t, []protocol.Type{protocol.TypeDeleteElement}, f.out.types())
	assert.Equal(t, int64(1), f.out.last().(*protocol.DeleteElement).ID)
}

func TestEraserCatchesFastMotion(t *testing.T) {
	f := newFixture()
	f.stroke(1, pt(50, 0), pt(50, 100))
	require.NoError(t, f.box.SetActive(KindEraser))
	f.box.Start(at(0, 50))
	f.box.Continue(move(0, 50, 100, 50))
	assert.Equal(t, 0, f.env.Sketch.Len())
}

func TestShapeTool(t *testing.T) {
	f := newFixture()
	f.env.Settings.SetShape(state.ShapeEllipse)
	require.NoError(t, f.box.SetActive(KindShape))

	f.box.Start(at(40, 40))
	f.box.Continue(move(40, 40, 10.5, 70.7))
	f.box.Stop(Gesture{})

	require.Len(t, f.scene.previews, 1)
	sh := f.scene.previews[0].el.(*state.Shape)
	assert.True(t, sh.MirrorX)
	assert.False(t, sh.MirrorY)
	assert.Equal(t, 29.0, sh.Width)
	assert.Equal(t, 30.0, sh.Height)

	send, ok := f.out.last().(*protocol.SendShape)
	require.True(t, ok)
	assert.Equal(t, state.KindShape, send.Shape.Kind)

	require.NoError(t, f.box.Confirm(state.KindShape, 11))
	assert.Equal(t, int64(11), sh.ID())
}

func TestShapeWithoutExtentIsDropped(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.box.SetActive(KindShape))
	f.box.Start(at(5, 5))
	f.box.Stop(at(5, 5))
	assert.True(t, f.scene.previews[0].removed)
	assert.Empty(t, f.out.messages())
}

func TestImageToolNeedsSource(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.box.SetActive(KindImage))
	f.box.Start(at(5, 5))
	assert.Equal(t, []string{"Choose an image first"}, f.notes.msgs)
	assert.Empty(t, f.out.messages())

	f.env.Settings.SetImage("cat.png", 120)
	f.box.Start(at(5.8, 6.2))
	send, ok := f.out.last().(*protocol.SendImage)
	require.True(t, ok)
	assert.Equal(t, "cat.png", send.Image.Src)
	assert.Equal(t, 5.0, send.Image.X)
	assert.Equal(t, 120.0, send.Image.Width)
}

func TestBackgroundTool(t *testing.T) {
	f := newFixture()
	f.env.Settings.SetColor("#112233")
	require.NoError(t, f.box.SetActive(KindBackground))
	f.box.Start(at(1, 1))
	assert.Equal(t, "#112233", f.env.Sketch.Background)
	assert.Equal(t, "#112233", f.scene.background)
	assert.Equal(t, &protocol.BackgroundColor{Color: "#112233"}, f.out.last())
}

func TestTextToolEditsInline(t *testing.T) {
	f := newFixture()
	var open []bool
	f.box.Text.OnEdit = func(e bool) { open = append(open, e) }
	require.NoError(t, f.box.SetActive(KindText))

	f.box.Start(at(10, 10))
	f.box.Stop(at(10, 10))
	assert.True(t, f.box.TypeRune('h'))
	assert.True(t, f.box.TypeRune('i'))
	assert.True(t, f.box.TypeRune('!'))
	assert.True(t, f.box.Backspace())
	require.NoError(t, f.box.Confirm(state.KindText, 5))
	assert.True(t, f.box.Commit())

	el, ok := f.env.Sketch.Get(5)
	require.True(t, ok)
	assert.Equal(t, "hi", el.(*state.Text).Content)
	assert.Nil(t, f.box.Text.Editing())
	assert.Equal(t, []bool{true, false}, open)

	final := f.out.last().(*protocol.EditText)
	assert.True(t, final.Final)
	assert.Equal(t, "hi", final.Text)
	assert.False(t, f.box.TypeRune('x'))
}

func TestEmptyLabelIsDeletedOnConfirm(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.box.SetActive(KindText))
	f.box.Start(at(10, 10))
	f.box.Stop(at(10, 10))
	f.box.Start(at(300, 300))
	assert.Nil(t, f.box.Text.Editing())

	require.NoError(t, f.box.Confirm(state.KindText, 9))
	assert.Equal(t, 0, f.env.Sketch.Len())
	assert.Equal(t, &protocol.DeleteElement{ID: 9}, f.out.last())
}

func TestRemoteDeleteClosesTextEdit(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.box.SetActive(KindText))
	f.box.Start(at(10, 10))
	require.NoError(t, f.box.Confirm(state.KindText, 2))
	f.box.ElementsRemoved(f.env.Sketch.RemoveMany([]int64{2}))
	assert.Nil(t, f.box.Text.Editing())
	assert.False(t, f.box.TypeRune('a'))
}

func TestRejectedLabelClosesEdit(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.box.SetActive(KindText))
	f.box.Start(at(10, 10))
	require.NotNil(t, f.box.Text.Editing())

	require.NoError(t, f.box.Reject(state.KindText))
	assert.Nil(t, f.box.Text.Editing())
	assert.True(t, f.scene.previews[0].removed)
	assert.False(t, f.box.TypeRune('a'))
}

func TestSwitchingToolsClosesGesture(t *testing.T) {
	f := newFixture()
	f.box.Start(at(0, 0))
	require.NoError(t, f.box.SetActive(KindShape))
	assert.False(t, f.box.Brush.Drawing())
	f.box.Continue(move(0, 0, 5, 5))
	assert.Len(t, f.scene.previews, 1)
	assert.Error(t, f.box.SetActive("laser"))
}
