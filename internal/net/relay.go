package net

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"SketchBoard/internal/protocol"
	"SketchBoard/internal/state"
)

// RelayPath is where the relay accepts websocket connections.
const RelayPath = "/ws"

const partSize = 100

var ErrUnknownPeer = errors.New("net: no such peer")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// peer is one connected board.
type peer struct {
	id   string
	role protocol.Role
	conn *websocket.Conn
	send chan []byte

	openLine *state.Stroke
	openText *state.Text
	undo     []action
	redo     []action
}

// action is one undoable change made by a peer.
type action struct {
	created []state.Element
	deleted []state.Element
	before  []protocol.WireElement
	after   []protocol.WireElement
	scaled  bool
}

// Relay is the host side of a board: it keeps the sketch in memory, assigns
// element ids, confirms edits to their author and fans them out to everyone
// else. Messages from one peer are applied in arrival order.
type Relay struct {
	mu     sync.Mutex
	sketch *state.Sketch
	nextID int64
	peers  map[string]*peer
	order  []string

	// BatchInterval is announced to joining boards in the hello message.
	BatchInterval time.Duration

	server *http.Server
}

// NewRelay creates a relay hosting an empty sketch called name.
func NewRelay(name string, batch time.Duration) *Relay {
	sk := state.NewSketch()
	sk.ID = uuid.NewString()
	sk.Name = name
	return &Relay{
		sketch:        sk,
		nextID:        1,
		peers:         make(map[string]*peer),
		BatchInterval: batch,
	}
}

// Listen serves the relay on addr until ctx is done.
func (r *Relay) Listen(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return r.Serve(ctx, ln)
}

// Serve accepts boards on ln until ctx is done.
func (r *Relay) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle(RelayPath, r)
	r.server = &http.Server{Handler: mux}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		r.server.Shutdown(shutdown)
	}()
	log.Printf("[RELAY] Listening on %s", ln.Addr())
	if err := r.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ServeHTTP upgrades a board connection.
func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("[RELAY] Upgrade failed: %v", err)
		return
	}
	id := req.URL.Query().Get("client_id")
	if id == "" {
		id = uuid.NewString()
	}
	p := &peer{id: id, conn: conn, send: make(chan []byte, sendBuffer)}
	go r.writePump(p)
	r.join(p)
	r.readPump(p)
}

func (r *Relay) join(p *peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.peers[p.id]; ok {
		r.dropLocked(old)
	}
	p.role = protocol.RoleEditor
	if len(r.peers) == 0 {
		p.role = protocol.RoleOwner
	}
	r.peers[p.id] = p
	r.order = append(r.order, p.id)

	r.sendTo(p, &protocol.Hello{ClientID: p.id, BatchInterval: int(r.BatchInterval / time.Millisecond)})
	r.sendTo(p, &protocol.Sketch{
		ID:         r.sketch.ID,
		Name:       r.sketch.Name,
		Background: r.sketch.Background,
		Role:       p.role,
	})
	els := r.sketch.Elements()
	for i := 0; i < len(els) || i == 0; i += partSize {
		end := min(i+partSize, len(els))
		r.sendTo(p, &protocol.SketchPart{Elements: protocol.FromElements(els[i:end]), Last: end == len(els)})
	}
	for _, id := range r.order {
		if id != p.id {
			r.sendTo(p, &protocol.UserJoin{User: protocol.User{ID: id}})
		}
	}
	r.broadcast(p, &protocol.UserJoin{User: protocol.User{ID: p.id}})
	log.Printf("[RELAY] %s joined as %s", p.id, p.role)
}

func (r *Relay) leave(p *peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.peers[p.id] != p {
		return
	}
	r.dropLocked(p)
	r.broadcast(nil, &protocol.UserLeave{User: protocol.User{ID: p.id}})
	log.Printf("[RELAY] %s left", p.id)
}

func (r *Relay) dropLocked(p *peer) {
	delete(r.peers, p.id)
	for i, id := range r.order {
		if id == p.id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	close(p.send)
}

func (r *Relay) readPump(p *peer) {
	defer func() {
		r.leave(p)
		p.conn.Close()
	}()
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[RELAY] %s: %v", p.id, err)
			}
			return
		}
		msg, err := protocol.Decode(data)
		if err != nil {
			log.Printf("[RELAY] %s sent garbage: %v", p.id, err)
			continue
		}
		r.apply(p, msg)
	}
}

func (r *Relay) writePump(p *peer) {
	defer p.conn.Close()
	for data := range p.send {
		p.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("[RELAY] Write to %s failed: %v", p.id, err)
			return
		}
	}
}

// sendTo queues msg for p. A peer too slow to drain its buffer is dropped.
func (r *Relay) sendTo(p *peer, msg protocol.Payload) {
	data, err := protocol.Encode(msg)
	if err != nil {
		log.Printf("[RELAY] %v", err)
		return
	}
	select {
	case p.send <- data:
	default:
		log.Printf("[RELAY] %s is not keeping up, disconnecting", p.id)
		p.conn.Close()
	}
}

// broadcast sends msg to everyone except skip.
func (r *Relay) broadcast(skip *peer, msg protocol.Payload) {
	for _, id := range r.order {
		if p := r.peers[id]; p != skip {
			r.sendTo(p, msg)
		}
	}
}

func (r *Relay) refuse(p *peer, format string, args ...any) {
	r.sendTo(p, &protocol.Error{Message: fmt.Sprintf(format, args...)})
}

// reject refuses a create so the author can drop its unconfirmed edit. An
// open line or text is closed so later edits do not land on the previous one.
func (r *Relay) reject(p *peer, kind state.Kind, format string, args ...any) {
	switch kind {
	case state.KindStroke:
		p.openLine = nil
	case state.KindText:
		p.openText = nil
	}
	r.sendTo(p, &protocol.RejectElement{Kind: kind})
	r.refuse(p, format, args...)
}

// createKind returns the kind of element msg asks the relay to create.
func createKind(msg protocol.Payload) (state.Kind, bool) {
	switch msg.(type) {
	case *protocol.StartStroke:
		return state.KindStroke, true
	case *protocol.StartText:
		return state.KindText, true
	case *protocol.SendShape:
		return state.KindShape, true
	case *protocol.SendImage:
		return state.KindImage, true
	}
	return "", false
}

func (r *Relay) apply(p *peer, msg protocol.Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.peers[p.id] != p {
		return
	}
	if !p.role.CanDraw() {
		if kind, ok := createKind(msg); ok {
			r.reject(p, kind, "Viewers cannot change the board")
			return
		}
		r.refuse(p, "Viewers cannot change the board")
		return
	}
	switch m := msg.(type) {
	case *protocol.StartStroke:
		s := state.NewStroke(state.Style{Color: m.Color, Width: m.Width, Dash: m.Dash, Brush: m.Style}, state.Vertex{X: m.X, Y: m.Y})
		if !r.create(p, s) {
			return
		}
		p.openLine = s
		r.broadcast(p, &protocol.DrawLine{Element: protocol.FromElement(s)})
	case *protocol.ContinueStroke:
		vs, err := protocol.UnflattenVertices(m.Vertices)
		if err != nil || p.openLine == nil {
			return
		}
		p.openLine.Append(vs...)
		r.broadcast(p, &protocol.ContinueLine{ID: p.openLine.ID(), Vertices: m.Vertices})
	case *protocol.MoveLastVertex:
		if p.openLine == nil {
			return
		}
		p.openLine.ReplaceLast(state.Vertex{X: m.X, Y: m.Y})
		r.broadcast(p, &protocol.MoveLastVertex{ID: p.openLine.ID(), X: m.X, Y: m.Y})
	case *protocol.StartText:
		e, ok := r.fromWire(p, m.Text)
		if !ok {
			r.reject(p, state.KindText, "The element could not be read")
			return
		}
		t, ok := e.(*state.Text)
		if !ok {
			r.reject(p, state.KindText, "start-text needs a text element")
			return
		}
		if !r.create(p, t) {
			return
		}
		p.openText = t
		r.broadcast(p, &protocol.DrawElement{Element: protocol.FromElement(t)})
	case *protocol.EditText:
		if p.openText == nil {
			return
		}
		p.openText.SetContent(m.Text)
		r.broadcast(p, &protocol.EditText{ID: p.openText.ID(), Text: m.Text, Final: m.Final})
		if m.Final {
			p.openText = nil
		}
	case *protocol.SendShape:
		r.createWire(p, m.Shape, state.KindShape)
	case *protocol.SendImage:
		r.createWire(p, m.Image, state.KindImage)
	case *protocol.DeleteElement:
		r.delete(p, []int64{m.ID})
	case *protocol.DeleteElements:
		r.delete(p, m.IDs)
	case *protocol.CopyElements:
		r.paste(p, m.Elements)
	case *protocol.MoveElements:
		r.transform(p, m.Elements, false)
	case *protocol.ScaleElements:
		r.transform(p, m.Elements, true)
	case *protocol.BackgroundColor:
		r.sketch.Background = m.Color
		r.broadcast(p, m)
	case *protocol.Undo:
		r.undo(p)
	case *protocol.Redo:
		r.redo(p)
	default:
		log.Printf("[RELAY] %s sent %s, which only the relay sends", p.id, msg.MessageType())
	}
}

func (r *Relay) fromWire(p *peer, w protocol.WireElement) (state.Element, bool) {
	e, err := w.Element()
	if err != nil {
		log.Printf("[RELAY] %s: %v", p.id, err)
		return nil, false
	}
	return e, true
}

// create assigns the next id to e, stores it and confirms it to the author.
func (r *Relay) create(p *peer, e state.Element) bool {
	e.SetID(r.nextID)
	r.nextID++
	if err := r.sketch.Add(e); err != nil {
		log.Printf("[RELAY] %v", err)
		r.reject(p, e.Kind(), "The element could not be stored")
		return false
	}
	r.sendTo(p, &protocol.ConfirmElement{ID: e.ID(), Kind: e.Kind()})
	r.record(p, action{created: []state.Element{e}})
	return true
}

func (r *Relay) createWire(p *peer, w protocol.WireElement, kind state.Kind) {
	e, ok := r.fromWire(p, w)
	if !ok {
		r.reject(p, kind, "The element could not be read")
		return
	}
	if e.Kind() != kind {
		r.reject(p, kind, "Expected a %s element", kind)
		return
	}
	if !r.create(p, e) {
		return
	}
	r.broadcast(p, &protocol.DrawElement{Element: protocol.FromElement(e)})
}

func (r *Relay) paste(p *peer, ws []protocol.WireElement) {
	var els []state.Element
	for _, w := range ws {
		e, ok := r.fromWire(p, w)
		if !ok {
			r.refuse(p, "The element could not be read")
			continue
		}
		e.SetID(r.nextID)
		r.nextID++
		if err := r.sketch.Add(e); err != nil {
			log.Printf("[RELAY] %v", err)
			continue
		}
		els = append(els, e)
	}
	if len(els) == 0 {
		return
	}
	wire := protocol.FromElements(els)
	r.sendTo(p, &protocol.CopyElements{Elements: wire})
	r.broadcast(p, &protocol.CopiedElements{Elements: wire})
	r.record(p, action{created: els})
}

func (r *Relay) delete(p *peer, ids []int64) {
	removed := r.sketch.RemoveMany(ids)
	if len(removed) == 0 {
		return
	}
	r.forgetOpen(removed)
	r.announceDelete(p, removed)
	r.record(p, action{deleted: removed})
}

func (r *Relay) announceDelete(skip *peer, removed []state.Element) {
	if len(removed) == 1 {
		r.broadcast(skip, &protocol.DeleteElement{ID: removed[0].ID()})
		return
	}
	r.broadcast(skip, &protocol.DeleteElements{IDs: elementIDs(removed)})
}

// forgetOpen closes any open line or label that was just deleted.
func (r *Relay) forgetOpen(removed []state.Element) {
	for _, e := range removed {
		for _, q := range r.peers {
			if q.openLine != nil && state.Element(q.openLine) == e {
				q.openLine = nil
			}
			if q.openText != nil && state.Element(q.openText) == e {
				q.openText = nil
			}
		}
	}
}

func (r *Relay) transform(p *peer, ws []protocol.WireElement, scaled bool) {
	var before, after []protocol.WireElement
	for _, w := range ws {
		cur, ok := r.sketch.Get(w.ID)
		if !ok {
			continue
		}
		next, ok := r.fromWire(p, w)
		if !ok {
			continue
		}
		prev := protocol.FromElement(cur)
		if err := cur.CopyFrom(next); err != nil {
			log.Printf("[RELAY] %s: %v", p.id, err)
			continue
		}
		before = append(before, prev)
		after = append(after, protocol.FromElement(cur))
	}
	if len(after) == 0 {
		return
	}
	r.broadcast(p, transformMsg(after, scaled))
	r.record(p, action{before: before, after: after, scaled: scaled})
}

func transformMsg(ws []protocol.WireElement, scaled bool) protocol.Payload {
	if scaled {
		return &protocol.ScaleElements{Elements: ws}
	}
	return &protocol.MoveElements{Elements: ws}
}

func (r *Relay) record(p *peer, a action) {
	p.undo = append(p.undo, a)
	p.redo = nil
	r.sendTo(p, &protocol.UndoRedo{Undo: true, Redo: false})
}

func (r *Relay) undo(p *peer) {
	if len(p.undo) == 0 {
		return
	}
	a := p.undo[len(p.undo)-1]
	p.undo = p.undo[:len(p.undo)-1]
	r.revert(a)
	p.redo = append(p.redo, a)
	r.sendTo(p, &protocol.UndoRedo{Undo: len(p.undo) > 0, Redo: true})
}

func (r *Relay) redo(p *peer) {
	if len(p.redo) == 0 {
		return
	}
	a := p.redo[len(p.redo)-1]
	p.redo = p.redo[:len(p.redo)-1]
	r.replay(a)
	p.undo = append(p.undo, a)
	r.sendTo(p, &protocol.UndoRedo{Undo: true, Redo: len(p.redo) > 0})
}

// revert undoes a for everyone, the author included.
func (r *Relay) revert(a action) {
	switch {
	case len(a.created) > 0:
		removed := r.sketch.RemoveMany(elementIDs(a.created))
		r.forgetOpen(removed)
		if len(removed) > 0 {
			r.announceDelete(nil, removed)
		}
	case len(a.deleted) > 0:
		r.restore(a.deleted)
	case len(a.before) > 0:
		r.reapply(a.before, a.scaled)
	}
}

func (r *Relay) replay(a action) {
	switch {
	case len(a.created) > 0:
		r.restore(a.created)
	case len(a.deleted) > 0:
		removed := r.sketch.RemoveMany(elementIDs(a.deleted))
		if len(removed) > 0 {
			r.announceDelete(nil, removed)
		}
	case len(a.after) > 0:
		r.reapply(a.after, a.scaled)
	}
}

func (r *Relay) restore(els []state.Element) {
	for _, e := range els {
		if err := r.sketch.Add(e); err != nil {
			log.Printf("[RELAY] Restore: %v", err)
			continue
		}
		r.broadcast(nil, &protocol.DrawElement{Element: protocol.FromElement(e)})
	}
}

func (r *Relay) reapply(ws []protocol.WireElement, scaled bool) {
	var applied []protocol.WireElement
	for _, w := range ws {
		cur, ok := r.sketch.Get(w.ID)
		if !ok {
			continue
		}
		next, err := w.Element()
		if err != nil || cur.CopyFrom(next) != nil {
			continue
		}
		applied = append(applied, w)
	}
	if len(applied) > 0 {
		r.broadcast(nil, transformMsg(applied, scaled))
	}
}

func elementIDs(els []state.Element) []int64 {
	ids := make([]int64, len(els))
	for i, e := range els {
		ids[i] = e.ID()
	}
	return ids
}

// SetRole changes a peer's permission level and tells it.
func (r *Relay) SetRole(id string, role protocol.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.peers[id]
	if !ok {
		return fmt.Errorf("set role of %s: %w", id, ErrUnknownPeer)
	}
	p.role = role
	if !role.CanDraw() {
		p.openLine, p.openText = nil, nil
	}
	r.sendTo(p, &protocol.RoleUpdated{Role: role})
	log.Printf("[RELAY] %s is now %s", id, role)
	return nil
}

// Kick disconnects a peer after telling it why.
func (r *Relay) Kick(id, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.peers[id]
	if !ok {
		return fmt.Errorf("kick %s: %w", id, ErrUnknownPeer)
	}
	r.sendTo(p, &protocol.Kicked{Reason: reason})
	r.dropLocked(p)
	r.broadcast(nil, &protocol.UserLeave{User: protocol.User{ID: id}})
	log.Printf("[RELAY] Kicked %s: %s", id, reason)
	return nil
}

// Peers returns the ids of the connected boards in join order.
func (r *Relay) Peers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// snapshot returns the wire form of every element the relay holds.
func (r *Relay) snapshot() []protocol.WireElement {
	r.mu.Lock()
	defer r.mu.Unlock()
	return protocol.FromElements(r.sketch.Elements())
}
