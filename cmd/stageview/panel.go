package main

import (
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

// panelActions are the viewer operations the control panel triggers.
type panelActions struct {
	toggleCollision func()
	toggleObjects   func()
	zoom            func(delta int)
	reload          func()
}

// controlPanel is the bottom bar: toggles, zoom, reload and a status line.
type controlPanel struct {
	ui           *ebitenui.UI
	collisionBtn *widget.Button
	objectsBtn   *widget.Button
	status       *widget.Text
}

func newControlPanel(actions panelActions) *controlPanel {
	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)

	btnImg := &widget.ButtonImage{
		Idle:    imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}),
		Hover:   imageui.NewNineSliceColor(color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff}),
		Pressed: imageui.NewNineSliceColor(color.NRGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}),
	}
	btnTextColor := &widget.ButtonTextColor{Idle: color.White}

	button := func(label string, onClick func()) *widget.Button {
		return widget.NewButton(
			widget.ButtonOpts.Image(btnImg),
			widget.ButtonOpts.Text(label, &face, btnTextColor),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				onClick()
			}),
		)
	}

	p := &controlPanel{}
	p.collisionBtn = button("Collision", actions.toggleCollision)
	p.objectsBtn = button("Objects", actions.toggleObjects)
	zoomOut := button("-", func() { actions.zoom(-1) })
	zoomIn := button("+", func() { actions.zoom(1) })
	reload := button("Reload", actions.reload)

	p.status = widget.NewText(
		widget.TextOpts.Text("", &face, color.White),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
	)

	bar := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(imageui.NewNineSliceColor(color.NRGBA{A: 200})),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(6),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 4, Bottom: 4, Left: 6, Right: 6}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionStart,
				VerticalPosition:   widget.AnchorLayoutPositionEnd,
				StretchHorizontal:  true,
			}),
		),
	)
	bar.AddChild(p.collisionBtn)
	bar.AddChild(p.objectsBtn)
	bar.AddChild(zoomOut)
	bar.AddChild(zoomIn)
	bar.AddChild(reload)
	bar.AddChild(p.status)

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(bar)

	p.ui = &ebitenui.UI{Container: root}
	return p
}

func toggleLabel(name string, on bool) string {
	if on {
		return name + ": On"
	}
	return name + ": Off"
}

func setToggleLabel(btn *widget.Button, name string, on bool) {
	if text := btn.Text(); text != nil {
		text.Label = toggleLabel(name, on)
	}
}

// sync mirrors the viewer state into the widgets.
func (p *controlPanel) sync(collision, objects bool, status string) {
	setToggleLabel(p.collisionBtn, "Collision", collision)
	setToggleLabel(p.objectsBtn, "Objects", objects)
	p.status.Label = status
}
