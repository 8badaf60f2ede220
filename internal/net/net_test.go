package net

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SketchBoard/internal/protocol"
	"SketchBoard/internal/state"
)

type board struct {
	c      *Client
	inbox  chan protocol.Payload
	closed chan error
}

func join(t *testing.T, srv *httptest.Server, id string) *board {
	t.Helper()
	b := &board{inbox: make(chan protocol.Payload, 256), closed: make(chan error, 1)}
	addr := strings.TrimPrefix(srv.URL, "http://")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, addr, id,
		func(p protocol.Payload) { b.inbox <- p },
		func(err error) { b.closed <- err })
	require.NoError(t, err)
	b.c = c
	t.Cleanup(func() { c.Close() })
	b.await(t, protocol.TypeSketchPart)
	return b
}

// await skips messages until one of type typ arrives.
func (b *board) await(t *testing.T, typ protocol.Type) protocol.Payload {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case p := <-b.inbox:
			if p.MessageType() == typ {
				return p
			}
		case <-timeout:
			t.Fatalf("no %s within 2s", typ)
			return nil
		}
	}
}

func newRelay(t *testing.T) (*Relay, *httptest.Server) {
	t.Helper()
	r := NewRelay("test board", 20*time.Millisecond)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return r, srv
}

func TestJoinAssignsRoles(t *testing.T) {
	r, srv := newRelay(t)
	a := join(t, srv, "alice")
	join(t, srv, "bob")

	joined := a.await(t, protocol.TypeUserJoin).(*protocol.UserJoin)
	assert.Equal(t, "bob", joined.User.ID)
	assert.Equal(t, []string{"alice", "bob"}, r.Peers())
}

func TestHelloCarriesBatchInterval(t *testing.T) {
	_, srv := newRelay(t)
	b := &board{inbox: make(chan protocol.Payload, 64), closed: make(chan error, 1)}
	c, err := Dial(context.Background(), strings.TrimPrefix(srv.URL, "http://"), "carol",
		func(p protocol.Payload) { b.inbox <- p }, nil)
	require.NoError(t, err)
	defer c.Close()

	hello := b.await(t, protocol.TypeHello).(*protocol.Hello)
	assert.Equal(t, "carol", hello.ClientID)
	assert.Equal(t, 20, hello.BatchInterval)
	sk := b.await(t, protocol.TypeSketch).(*protocol.Sketch)
	assert.Equal(t, "test board", sk.Name)
	assert.Equal(t, protocol.RoleOwner, sk.Role)
}

func TestStrokeIsConfirmedAndRelayed(t *testing.T) {
	_, srv := newRelay(t)
	a := join(t, srv, "alice")
	b := join(t, srv, "bob")

	a.c.Send(&protocol.StartStroke{X: 1, Y: 2, Color: "#000000", Width: 3})
	conf := a.await(t, protocol.TypeConfirmElement).(*protocol.ConfirmElement)
	assert.Equal(t, int64(1), conf.ID)
	assert.Equal(t, state.KindStroke, conf.Kind)

	line := b.await(t, protocol.TypeDrawLine).(*protocol.DrawLine)
	assert.Equal(t, int64(1), line.Element.ID)

	a.c.Send(&protocol.ContinueStroke{Vertices: []float64{5, 5, 9, 9}})
	cont := b.await(t, protocol.TypeContinueLine).(*protocol.ContinueLine)
	assert.Equal(t, int64(1), cont.ID)
	assert.Equal(t, []float64{5, 5, 9, 9}, cont.Vertices)

	a.c.Send(&protocol.MoveLastVertex{X: 10, Y: 10})
	mv := b.await(t, protocol.TypeMoveLastVertex).(*protocol.MoveLastVertex)
	assert.Equal(t, int64(1), mv.ID)
}

func TestLateJoinerGetsElements(t *testing.T) {
	r, srv := newRelay(t)
	a := join(t, srv, "alice")
	a.c.Send(&protocol.SendShape{Shape: protocol.WireElement{Kind: state.KindShape, Shape: state.ShapeRectangle, Width: 10, Height: 10}})
	a.await(t, protocol.TypeConfirmElement)

	late := &board{inbox: make(chan protocol.Payload, 64)}
	c, err := Dial(context.Background(), strings.TrimPrefix(srv.URL, "http://"), "late",
		func(p protocol.Payload) { late.inbox <- p }, nil)
	require.NoError(t, err)
	defer c.Close()
	part := late.await(t, protocol.TypeSketchPart).(*protocol.SketchPart)
	assert.True(t, part.Last)
	require.Len(t, part.Elements, 1)
	assert.Equal(t, state.KindShape, part.Elements[0].Kind)
	assert.Len(t, r.snapshot(), 1)
}

func TestUndoRedoCreation(t *testing.T) {
	r, srv := newRelay(t)
	a := join(t, srv, "alice")
	b := join(t, srv, "bob")

	a.c.Send(&protocol.SendImage{Image: protocol.WireElement{Kind: state.KindImage, Src: "cat.png", Width: 50}})
	a.await(t, protocol.TypeConfirmElement)
	flags := a.await(t, protocol.TypeUndoRedo).(*protocol.UndoRedo)
	assert.True(t, flags.Undo)

	a.c.Send(&protocol.Undo{})
	del := b.await(t, protocol.TypeDeleteElement).(*protocol.DeleteElement)
	assert.Equal(t, int64(1), del.ID)
	a.await(t, protocol.TypeDeleteElement)
	flags = a.await(t, protocol.TypeUndoRedo).(*protocol.UndoRedo)
	assert.False(t, flags.Undo)
	assert.True(t, flags.Redo)
	assert.Empty(t, r.snapshot())

	a.c.Send(&protocol.Redo{})
	back := b.await(t, protocol.TypeDrawElement).(*protocol.DrawElement)
	assert.Equal(t, int64(1), back.Element.ID)
	assert.Len(t, r.snapshot(), 1)
}

func TestPasteAssignsIDs(t *testing.T) {
	_, srv := newRelay(t)
	a := join(t, srv, "alice")
	b := join(t, srv, "bob")

	a.c.Send(&protocol.CopyElements{Elements: []protocol.WireElement{
		{Kind: state.KindStroke, Vertices: []float64{0, 0, 1, 1}},
		{Kind: state.KindText, Text: "hi", FontSize: 12},
	}})
	own := a.await(t, protocol.TypeCopyElements).(*protocol.CopyElements)
	require.Len(t, own.Elements, 2)
	assert.Equal(t, int64(1), own.Elements[0].ID)
	assert.Equal(t, int64(2), own.Elements[1].ID)

	other := b.await(t, protocol.TypeCopiedElements).(*protocol.CopiedElements)
	assert.Len(t, other.Elements, 2)
}

func TestViewerIsRefused(t *testing.T) {
	r, srv := newRelay(t)
	join(t, srv, "alice")
	b := join(t, srv, "bob")

	require.NoError(t, r.SetRole("bob", protocol.RoleViewer))
	role := b.await(t, protocol.TypeRoleUpdated).(*protocol.RoleUpdated)
	assert.Equal(t, protocol.RoleViewer, role.Role)

	b.c.Send(&protocol.BackgroundColor{Color: "#ff0000"})
	refusal := b.await(t, protocol.TypeError).(*protocol.Error)
	assert.NotEmpty(t, refusal.Message)
	assert.ErrorIs(t, r.SetRole("nobody", protocol.RoleViewer), ErrUnknownPeer)
}

func TestRefusedCreateIsRejectedByKind(t *testing.T) {
	r, srv := newRelay(t)
	join(t, srv, "alice")
	b := join(t, srv, "bob")
	require.NoError(t, r.SetRole("bob", protocol.RoleViewer))

	b.c.Send(&protocol.SendShape{Shape: protocol.WireElement{Kind: state.KindShape, Shape: state.ShapeEllipse, Width: 4, Height: 4}})
	rej := b.await(t, protocol.TypeRejectElement).(*protocol.RejectElement)
	assert.Equal(t, state.KindShape, rej.Kind)

	require.NoError(t, r.SetRole("bob", protocol.RoleEditor))
	b.c.Send(&protocol.SendImage{Image: protocol.WireElement{Kind: state.KindShape, Shape: state.ShapeEllipse, Width: 4, Height: 4}})
	rej = b.await(t, protocol.TypeRejectElement).(*protocol.RejectElement)
	assert.Equal(t, state.KindImage, rej.Kind)
	assert.Empty(t, r.snapshot())
}

func TestKick(t *testing.T) {
	r, srv := newRelay(t)
	a := join(t, srv, "alice")
	b := join(t, srv, "bob")

	require.NoError(t, r.Kick("bob", "too many doodles"))
	kicked := b.await(t, protocol.TypeKicked).(*protocol.Kicked)
	assert.Equal(t, "too many doodles", kicked.Reason)
	left := a.await(t, protocol.TypeUserLeave).(*protocol.UserLeave)
	assert.Equal(t, "bob", left.User.ID)

	select {
	case <-b.c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("kicked client still connected")
	}
	assert.Equal(t, []string{"alice"}, r.Peers())
}

func TestShareLink(t *testing.T) {
	link := ShareLink("192.168.1.20", 8888)
	assert.Equal(t, "sketchboard://192.168.1.20:8888", link)
	addr, ok := ParseLink(link + "/")
	require.True(t, ok)
	assert.Equal(t, "192.168.1.20:8888", addr)

	_, ok = ParseLink("localboard://1.2.3.4:1")
	assert.False(t, ok)
	_, ok = ParseLink("sketchboard://nope")
	assert.False(t, ok)
}
