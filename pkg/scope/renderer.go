package scope

import (
	"image/color"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/govitals/pkg/device"
	"github.com/itohio/govitals/pkg/trend"
)

var (
	colorGrid     = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	colorLabel    = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	colorRaw      = color.RGBA{R: 255, G: 165, B: 0, A: 255}   // Orange
	colorFiltered = color.RGBA{R: 100, G: 200, B: 255, A: 255} // Light blue
	colorStatus   = color.RGBA{R: 200, G: 200, B: 200, A: 255} // Light gray
)

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	// Background
	grid *canvas.Rectangle

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// plotArea is the rectangle the curves are drawn in, with its axis ranges.
type plotArea struct {
	x, y, w, h float32
	yMin, yMax float64
	xMin, xMax time.Time
}

func (p plotArea) pos(at time.Time, v float64) fyne.Position {
	span := p.xMax.Sub(p.xMin).Seconds()
	if span <= 0 {
		span = 1
	}
	x := p.x + float32(at.Sub(p.xMin).Seconds()/span)*p.w
	y := p.y + p.h - float32((v-p.yMin)/(p.yMax-p.yMin))*p.h
	return fyne.NewPos(x, y)
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	r.grid.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh updates the widget display.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	readings := r.scope.display
	stats := r.scope.stats
	area := plotArea{
		yMin: r.scope.yMin,
		yMax: r.scope.yMax,
		xMin: r.scope.xMin,
		xMax: r.scope.xMax,
	}
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.grid}

	const (
		marginLeft   = 60
		marginRight  = 20
		marginTop    = 20
		marginBottom = 40
	)
	area.x = marginLeft
	area.y = marginTop
	area.w = size.Width - marginLeft - marginRight
	area.h = size.Height - marginTop - marginBottom

	r.drawGrid(area)
	r.drawCurve(area, readings, func(d device.Reading) float64 { return d.RawC }, colorRaw, 1)
	r.drawCurve(area, readings, func(d device.Reading) float64 { return d.FilteredC }, colorFiltered, 2.5)
	if stats.Count > 0 {
		r.drawStatus(area, stats)
	}
}

// drawGrid draws the oscilloscope-style grid.
func (r *scopeRenderer) drawGrid(p plotArea) {
	// Horizontal grid lines (temperature)
	numHLines := 8
	for i := range numHLines + 1 {
		y := p.y + float32(i)*p.h/float32(numHLines)
		r.addLine(fyne.NewPos(p.x, y), fyne.NewPos(p.x+p.w, y), colorGrid, 1)

		value := p.yMax - float64(i)*(p.yMax-p.yMin)/float64(numHLines)
		text := canvas.NewText(formatCelsius(value), colorLabel)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(p.x-5, y-6))
		r.objects = append(r.objects, text)
	}

	// Vertical grid lines (time)
	numVLines := 10
	span := p.xMax.Sub(p.xMin)
	for i := range numVLines + 1 {
		x := p.x + float32(i)*p.w/float32(numVLines)
		r.addLine(fyne.NewPos(x, p.y), fyne.NewPos(x, p.y+p.h), colorGrid, 1)

		text := canvas.NewText(formatElapsed(span*time.Duration(i)/time.Duration(numVLines)), colorLabel)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-20, p.y+p.h+5))
		r.objects = append(r.objects, text)
	}
}

// drawCurve draws one series as connected segments.
func (r *scopeRenderer) drawCurve(p plotArea, readings []device.Reading, value func(device.Reading) float64, c color.Color, width float32) {
	if len(readings) < 2 {
		return
	}

	prev := p.pos(readings[0].Timestamp, value(readings[0]))
	for _, d := range readings[1:] {
		next := p.pos(d.Timestamp, value(d))
		r.addLine(prev, next, c, width)
		prev = next
	}
}

// drawStatus prints the latest values in the top-left corner.
func (r *scopeRenderer) drawStatus(p plotArea, s trend.Stats) {
	text := canvas.NewText(statusLine(s), colorStatus)
	text.TextSize = 11
	text.Alignment = fyne.TextAlignLeading
	text.Move(fyne.NewPos(p.x+10, p.y+10))
	r.objects = append(r.objects, text)
}

func (r *scopeRenderer) addLine(a, b fyne.Position, c color.Color, width float32) {
	line := canvas.NewLine(c)
	line.Position1 = a
	line.Position2 = b
	line.StrokeWidth = width
	r.objects = append(r.objects, line)
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {}

// statusLine formats e.g. "25.1 °C  +0.20 °C/min  VCC 5.00 V".
func statusLine(s trend.Stats) string {
	line := formatCelsius(s.Last.FilteredC) + "  "
	if s.RateCPM >= 0 {
		line += "+"
	}
	line += strconv.FormatFloat(s.RateCPM, 'f', 2, 64) + " °C/min  VCC "
	if s.Last.SupplyKnown() {
		line += strconv.FormatFloat(s.Last.SupplyV, 'f', 2, 64) + " V"
	} else {
		line += "n/a"
	}
	return line
}

func formatCelsius(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + " °C"
}

func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return strconv.FormatFloat(d.Seconds(), 'f', 0, 64) + "s"
	}
	return strconv.FormatFloat(d.Minutes(), 'f', 1, 64) + "m"
}
