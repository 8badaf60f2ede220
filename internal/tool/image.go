package tool

import (
	"SketchBoard/internal/protocol"
	"SketchBoard/internal/state"
)

// Image places the preselected picture with one click.
type Image struct {
	Base
	pending commitQueue
}

func NewImage(env *Env) *Image {
	return &Image{
		Base:    Base{env: env},
		pending: commitQueue{env: env, kind: state.KindImage},
	}
}

func (i *Image) Kind() Kind { return KindImage }

func (i *Image) Start(g Gesture) {
	set := i.env.Settings
	if set.ImageSource == "" {
		i.env.Notify.Notify("Choose an image first")
		return
	}
	im := state.NewImage(set.Style(), set.ImageSource, set.ImageWidth, g.Pos.Floor())
	i.pending.push(im, i.env.Scene.NewPreview(im))
	i.env.Out.Send(&protocol.SendImage{Image: protocol.FromElement(im)})
}

// Confirm reconciles the oldest unconfirmed image with id.
func (i *Image) Confirm(id int64) error {
	_, err := i.pending.confirm(id)
	return err
}

// Reject drops the oldest unconfirmed image.
func (i *Image) Reject() error {
	_, err := i.pending.reject()
	return err
}
