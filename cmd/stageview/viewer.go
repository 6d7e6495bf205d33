package main

import (
	"fmt"
	"image"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/sonicstage/render"
	"github.com/milk9111/sonicstage/stage"
	"github.com/milk9111/sonicstage/tiled"
	"github.com/milk9111/sonicstage/watch"
)

const (
	baseWidth  = 640
	baseHeight = 448
	scrollStep = 8
	maxZoom    = 4
)

type Viewer struct {
	load    func() (*tiled.Map, error)
	watcher *watch.Watcher
	panel   *controlPanel

	m         *tiled.Map
	img       *ebiten.Image
	opts      render.Options
	camX      int
	camY      int
	loadError error
}

func NewViewer(load func() (*tiled.Map, error), sheet image.Image, w *watch.Watcher) *Viewer {
	v := &Viewer{
		load:    load,
		watcher: w,
		opts: render.Options{
			Sheet:     sheet,
			Scale:     2,
			Collision: true,
			Objects:   true,
		},
	}
	v.panel = newControlPanel(panelActions{
		toggleCollision: v.toggleCollision,
		toggleObjects:   v.toggleObjects,
		zoom:            v.zoom,
		reload:          v.reload,
	})
	v.reload()
	return v
}

func (v *Viewer) toggleCollision() {
	v.opts.Collision = !v.opts.Collision
	v.redraw()
}

func (v *Viewer) toggleObjects() {
	v.opts.Objects = !v.opts.Objects
	v.redraw()
}

func (v *Viewer) zoom(delta int) {
	scale := nextZoom(v.opts.Scale, delta)
	if scale == v.opts.Scale {
		return
	}
	v.opts.Scale = scale
	v.redraw()
}

func nextZoom(scale, delta int) int {
	return max(1, min(scale+delta, maxZoom))
}

func (v *Viewer) reload() {
	m, err := v.load()
	if err != nil {
		v.loadError = err
		log.Printf("stageview: %v", err)
		return
	}
	v.m = m
	v.loadError = nil
	v.redraw()
}

func (v *Viewer) redraw() {
	if v.m == nil {
		return
	}
	rgba, err := render.Stage(v.m, v.opts)
	if err != nil {
		v.loadError = err
		log.Printf("stageview: %v", err)
		return
	}
	if v.img != nil {
		v.img.Deallocate()
	}
	v.img = ebiten.NewImageFromImage(rgba)
}

func (v *Viewer) Update() error {
	if v.watcher != nil {
		select {
		case <-v.watcher.Events:
			v.reload()
		case err := <-v.watcher.Errors:
			if err != nil {
				log.Printf("stageview: watch: %v", err)
			}
		default:
		}
	}

	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyA) {
		v.camX -= scrollStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyD) {
		v.camX += scrollStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyW) {
		v.camY -= scrollStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) || ebiten.IsKeyPressed(ebiten.KeyS) {
		v.camY += scrollStep
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		v.toggleCollision()
	case inpututil.IsKeyJustPressed(ebiten.KeyO):
		v.toggleObjects()
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		v.zoom(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		v.zoom(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		v.reload()
	}

	v.panel.ui.Update()
	v.panel.sync(v.opts.Collision, v.opts.Objects, v.status())

	v.clampCamera()
	return nil
}

func (v *Viewer) clampCamera() {
	if v.img == nil {
		return
	}
	w, h := v.img.Bounds().Dx(), v.img.Bounds().Dy()
	v.camX = max(0, min(v.camX, w-baseWidth))
	v.camY = max(0, min(v.camY, h-baseHeight))
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	if v.img != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(-v.camX), float64(-v.camY))
		screen.DrawImage(v.img, op)
	}

	v.panel.ui.Draw(screen)
}

func (v *Viewer) status() string {
	status := "no map"
	if v.m != nil {
		status = fmt.Sprintf("%dx%d tiles  %d bytes as .%s  x%d", v.m.Width(), v.m.Height(), encodedSize(v.m), stage.Extension, v.opts.Scale)
	}
	if v.loadError != nil {
		status += "  " + v.loadError.Error()
	}
	return status
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}

func encodedSize(m *tiled.Map) int {
	count := 0
	if l, ok := m.Layer(stage.ObjectsLayer); ok {
		if ol, ok := l.(stage.ObjectLayer); ok {
			count = ol.ObjectCount()
		}
	}
	return stage.Size(m.Width(), m.Height(), count)
}
