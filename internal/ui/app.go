package ui

import (
	"context"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"SketchBoard/internal/config"
	boardnet "SketchBoard/internal/net"
	"SketchBoard/internal/protocol"
	"SketchBoard/internal/render"
	"SketchBoard/internal/session"
	"SketchBoard/internal/state"
	"SketchBoard/internal/tool"
)

const dialTimeout = 5 * time.Second

// Options describe the board a window opens.
type Options struct {
	Config *config.Config
	// Addr is the relay's host:port.
	Addr      string
	ShareLink string
	// Relay is set when this process hosts the board.
	Relay *boardnet.Relay
}

// clipboard is shared by every board window of the process.
var clipboard = &tool.Clipboard{}

// outbox forwards to the relay connection once it exists. Messages sent
// before that are held back in order.
type outbox struct {
	mu      sync.Mutex
	client  *boardnet.Client
	pending []protocol.Payload
}

func (o *outbox) Send(p protocol.Payload) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.client == nil {
		o.pending = append(o.pending, p)
		return
	}
	o.client.Send(p)
}

func (o *outbox) attach(c *boardnet.Client) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.client = c
	for _, p := range o.pending {
		c.Send(p)
	}
	o.pending = nil
}

func (o *outbox) close() {
	o.mu.Lock()
	c := o.client
	o.mu.Unlock()
	if c != nil {
		c.Close()
	}
}

// Board is everything one window edits.
type Board struct {
	Sketch  *state.Sketch
	Scene   *render.Scene
	Tools   *tool.Toolbox
	Session *session.Session
	Status  *StatusBar
	View    *BoardView

	out *outbox
}

// NewBoard wires scene, tools and session for cfg.
func NewBoard(cfg *config.Config) *Board {
	sk := state.NewSketch()
	settings := cfg.Settings()
	scene := render.NewScene(sk,
		fyne.NewSize(float32(settings.Canvas.Width), float32(settings.Canvas.Height)),
		float32(cfg.Canvas.GridSize), cfg.Canvas.ShowGrid)
	status := NewStatusBar()
	out := &outbox{}
	env := &tool.Env{
		Sketch:    sk,
		Scene:     scene,
		Out:       out,
		Notify:    status,
		Settings:  settings,
		Clipboard: clipboard,
	}
	tools := tool.NewToolbox(env, cfg.Relay.BatchInterval.Duration)
	sess := session.New(tools, scene)
	bw := NewBoardWidget(scene, tools, sess)
	return &Board{
		Sketch:  sk,
		Scene:   scene,
		Tools:   tools,
		Session: sess,
		Status:  status,
		View:    NewBoardView(bw, scene, float32(cfg.Canvas.GridSize), cfg.Canvas.ShowGrid),
		out:     out,
	}
}

// Connect dials the relay; inbound messages are handled on the UI goroutine.
func (b *Board) Connect(ctx context.Context, addr string) error {
	c, err := boardnet.Dial(ctx, addr, state.NewSiteID(),
		func(p protocol.Payload) { fyne.Do(func() { b.Session.Handle(p) }) },
		func(err error) { fyne.Do(func() { b.Session.Disconnected(err) }) })
	if err != nil {
		return err
	}
	b.out.attach(c)
	return nil
}

// Close flushes the open stroke and hangs up.
func (b *Board) Close() {
	b.Tools.Close()
	b.out.close()
}

func RunApp(opts Options) {
	myApp := app.New()
	myWindow := myApp.NewWindow("SketchBoard")
	myWindow.Resize(fyne.NewSize(1280, 860))

	board := NewBoard(opts.Config)
	toolbar := NewToolbar(board.Tools, board.Session, board.View, board.Status, myWindow)

	closing := false
	board.Session.OnChange = func() {
		toolbar.refresh()
		if name := board.Sketch.Name; name != "" {
			myWindow.SetTitle("SketchBoard - " + name)
		}
	}
	board.Session.OnTerminate = func(reason string) {
		if closing {
			return
		}
		d := dialog.NewInformation("Session ended", reason, myWindow)
		d.SetOnClosed(myWindow.Close)
		d.Show()
	}
	myWindow.SetOnClosed(func() {
		closing = true
		board.Close()
	})

	footer := container.NewHBox(board.Status.Object())
	if opts.ShareLink != "" {
		link := opts.ShareLink
		footer.Add(widget.NewLabel("Share: " + link))
		footer.Add(widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
			myWindow.Clipboard().SetContent(link)
			board.Status.Notify("Link copied")
		}))
	}
	if opts.Relay != nil {
		relay := opts.Relay
		footer.Add(widget.NewButtonWithIcon("People", theme.AccountIcon(), func() {
			showPeople(relay, board.Session.ClientID, myWindow)
		}))
	}

	content := container.NewBorder(toolbar.Object(), footer, nil, nil, board.View)
	myWindow.SetContent(content)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		defer cancel()
		board.Status.Notifyf("Connecting to %s", opts.Addr)
		if err := board.Connect(ctx, opts.Addr); err != nil {
			log.Printf("[NET] %v", err)
			fyne.Do(func() { board.Session.Disconnected(err) })
			return
		}
		board.Status.Notify("Connected")
	}()

	myWindow.Canvas().Focus(board.View.Board())
	myWindow.ShowAndRun()
}

// showPeople lets the host change roles and remove participants.
func showPeople(relay *boardnet.Relay, self string, win fyne.Window) {
	list := container.NewVBox()
	var d dialog.Dialog
	for _, id := range relay.Peers() {
		if id == self {
			continue
		}
		role := widget.NewSelect([]string{string(protocol.RoleEditor), string(protocol.RoleViewer)}, func(r string) {
			if err := relay.SetRole(id, protocol.Role(r)); err != nil {
				log.Printf("[RELAY] %v", err)
			}
		})
		role.PlaceHolder = "role"
		kick := widget.NewButtonWithIcon("", theme.CancelIcon(), func() {
			if err := relay.Kick(id, "The host removed you from the board"); err != nil {
				log.Printf("[RELAY] %v", err)
			}
			d.Hide()
		})
		list.Add(container.NewBorder(nil, nil, nil, container.NewHBox(role, kick), widget.NewLabel(id)))
	}
	if len(list.Objects) == 0 {
		list.Add(widget.NewLabel("Nobody else is here yet"))
	}
	d = dialog.NewCustom("People", "Close", list, win)
	d.Resize(fyne.NewSize(480, 0))
	d.Show()
}
