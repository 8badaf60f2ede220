package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SketchBoard/internal/geometry"
	"SketchBoard/internal/state"
)

func TestDecodeDispatchesOnType(t *testing.T) {
	p, err := Decode([]byte(`{"type":"confirm-element","data":{"id":42,"kind":"line"}}`))
	require.NoError(t, err)
	c, ok := p.(*ConfirmElement)
	require.True(t, ok)
	assert.Equal(t, int64(42), c.ID)
	assert.Equal(t, state.KindStroke, c.Kind)

	p, err = Decode([]byte(`{"type":"undo"}`))
	require.NoError(t, err)
	assert.IsType(t, &Undo{}, p)
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"teleport","data":{}}`))
	assert.True(t, errors.Is(err, ErrUnknownType))
}

func TestEncodeWrapsEnvelope(t *testing.T) {
	b, err := Encode(&ContinueStroke{Vertices: []float64{1, 2, 3, 4}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"continue-stroke","data":{"vertices":[1,2,3,4]}}`, string(b))
}

func TestWireElementVariants(t *testing.T) {
	st := state.NewStroke(state.Style{Color: "#ff0000", Width: 3, Dash: []float64{4, 2}}, geometry.Pt(1, 2))
	st.Append(geometry.Pt(3, 4))
	st.SetID(9)

	w := FromElement(st)
	assert.Equal(t, []float64{1, 2, 3, 4}, w.Vertices)
	assert.Equal(t, state.KindStroke, w.Kind)

	back, err := w.Element()
	require.NoError(t, err)
	s2 := back.(*state.Stroke)
	assert.Equal(t, int64(9), s2.ID())
	assert.Equal(t, st.Vertices, s2.Vertices)
	assert.Equal(t, []float64{4, 2}, s2.Style.Dash)

	sh := state.NewShape(state.Style{}, state.ShapeTriangle, "#00ff00", geometry.Pt(5, 5))
	sh.Span(geometry.Pt(0, 10))
	got, err := FromElement(sh).Element()
	require.NoError(t, err)
	assert.Equal(t, sh.Box(), got.(*state.Shape).Box())
	assert.True(t, got.(*state.Shape).MirrorX)
}

func TestWireElementErrors(t *testing.T) {
	_, err := WireElement{Kind: "blob"}.Element()
	assert.True(t, errors.Is(err, ErrUnknownKind))

	_, err = WireElement{Kind: state.KindStroke, Vertices: []float64{1, 2, 3}}.Element()
	assert.True(t, errors.Is(err, ErrOddVertices))
}

func TestRoleCanDraw(t *testing.T) {
	assert.True(t, RoleOwner.CanDraw())
	assert.True(t, RoleEditor.CanDraw())
	assert.False(t, RoleViewer.CanDraw())
	assert.False(t, Role("").CanDraw())
}
