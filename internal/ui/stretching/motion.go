package stretching

import (
	"image/color"

	"eyestretch/internal/core/pattern"
	"eyestretch/internal/core/session"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
)

const (
	dotDiameter = float32(24)
	guideSteps  = 120
)

var (
	mint       = color.NRGBA{R: 62, G: 207, B: 178, A: 255}
	guideColor = color.NRGBA{R: 142, G: 142, B: 147, A: 110}
)

// motionArea draws the guide path and the moving dot for the current pattern.
type motionArea struct {
	session      *session.Session
	background   *canvas.Rectangle
	guide        *fyne.Container
	dot          *canvas.Circle
	check        *fyne.Container
	checkLabel   *canvas.Text
	root         *fyne.Container
	size         fyne.Size
	guidePattern pattern.ID
	guideSize    fyne.Size
	revision     uint64
	guideRev     uint64
	onResize     func(fyne.Size)
}

func newMotionArea(sess *session.Session) *motionArea {
	area := &motionArea{
		session:    sess,
		background: canvas.NewRectangle(color.Transparent),
		guide:      container.NewWithoutLayout(),
		dot:        canvas.NewCircle(mint),
	}
	area.dot.Resize(fyne.NewSize(dotDiameter, dotDiameter))
	area.dot.Hide()

	checkMark := canvas.NewText("✓", mint)
	checkMark.TextSize = 64
	checkMark.TextStyle = fyne.TextStyle{Bold: true}
	checkMark.Alignment = fyne.TextAlignCenter
	area.checkLabel = canvas.NewText("", mint)
	area.checkLabel.TextSize = 22
	area.checkLabel.TextStyle = fyne.TextStyle{Bold: true}
	area.checkLabel.Alignment = fyne.TextAlignCenter
	area.check = container.NewVBox(checkMark, area.checkLabel)
	area.check.Hide()

	area.root = container.New(&motionLayout{area: area}, area.background, area.guide, area.check, area.dot)
	return area
}

// viewport returns the current drawable size in pattern coordinates.
func (area *motionArea) viewport() pattern.Viewport {
	return pattern.Viewport{Width: float64(area.size.Width), Height: float64(area.size.Height)}
}

// update syncs the guide and the completion check with the session snapshot.
func (area *motionArea) update(snapshot session.Snapshot, completeText string) {
	area.checkLabel.Text = completeText
	if snapshot.State == session.StateTransition {
		area.check.Show()
	} else {
		area.check.Hide()
	}
	area.check.Refresh()
	area.revision = snapshot.Revision
	area.refreshGuide(snapshot.Pattern)
	area.moveDot()
}

func (area *motionArea) refreshGuide(id pattern.ID) {
	if id == area.guidePattern && area.size == area.guideSize && area.revision == area.guideRev {
		return
	}
	area.guidePattern = id
	area.guideSize = area.size
	area.guideRev = area.revision

	points := area.session.GuidePath(area.viewport(), guideSteps)
	lines := make([]fyne.CanvasObject, 0, len(points)/2)
	// Every other segment is drawn to dash the outline.
	for index := 0; index+1 < len(points); index += 2 {
		line := canvas.NewLine(guideColor)
		line.StrokeWidth = 2
		line.Position1 = fyne.NewPos(float32(points[index].X), float32(points[index].Y))
		line.Position2 = fyne.NewPos(float32(points[index+1].X), float32(points[index+1].Y))
		lines = append(lines, line)
	}
	area.guide.Objects = lines
	area.guide.Refresh()
}

// moveDot places the dot at the session's current position. Runs every frame.
func (area *motionArea) moveDot() {
	point, visible := area.session.Position(area.viewport())
	if !visible {
		if area.dot.Visible() {
			area.dot.Hide()
		}
		return
	}
	radius := dotDiameter / 2
	area.dot.Move(fyne.NewPos(float32(point.X)-radius, float32(point.Y)-radius))
	if !area.dot.Visible() {
		area.dot.Show()
	}
	area.dot.Refresh()
}

func (area *motionArea) resized(size fyne.Size) {
	if size == area.size {
		return
	}
	area.size = size
	if area.onResize != nil {
		area.onResize(size)
	}
	area.guideSize = fyne.Size{}
	area.refreshGuide(area.guidePattern)
	area.moveDot()
}

type motionLayout struct {
	area *motionArea
}

func (layout *motionLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	area := layout.area
	area.background.Move(fyne.NewPos(0, 0))
	area.background.Resize(size)
	area.guide.Move(fyne.NewPos(0, 0))
	area.guide.Resize(size)

	checkSize := area.check.MinSize()
	area.check.Move(fyne.NewPos((size.Width-checkSize.Width)/2, (size.Height-checkSize.Height)/2))
	area.check.Resize(checkSize)

	area.resized(size)
}

func (layout *motionLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(240, 240)
}
