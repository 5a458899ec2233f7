package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/govitals/pkg/device"
	"github.com/itohio/govitals/pkg/trend"
)

// ScopeWidget is a custom Fyne widget that plots raw and filtered die
// temperature over time, annotated with the latest supply voltage and rate.
type ScopeWidget struct {
	widget.BaseWidget

	window time.Duration

	// Data (protected by mu)
	mu       sync.RWMutex
	readings []device.Reading
	stats    trend.Stats

	// Display buffer (reused for downsampling)
	display []device.Reading

	// Auto-scaling
	yMin, yMax float64
	xMin, xMax time.Time

	// Display settings
	maxDisplayPoints int
}

// New creates a new ScopeWidget showing at least window of history.
func New(window time.Duration) *ScopeWidget {
	s := &ScopeWidget{
		window:           window,
		display:          make([]device.Reading, 0, 1000),
		maxDisplayPoints: 1000, // Limit points for efficient rendering
	}
	s.ExtendBaseWidget(s)
	s.mu.Lock()
	s.updateAutoScale()
	s.mu.Unlock()
	return s
}

// UpdateData replaces the plotted readings.
// This should be called from the trend callback using fyne.Do().
func (s *ScopeWidget) UpdateData(readings []device.Reading, stats trend.Stats) {
	s.mu.Lock()
	s.display = trend.Downsample(s.display, readings, s.maxDisplayPoints)
	s.readings = readings
	s.stats = stats
	s.updateAutoScale()
	s.mu.Unlock()

	// Refresh outside the lock; the renderer takes a read lock
	s.Refresh()
}

// Clear removes all readings from the plot.
func (s *ScopeWidget) Clear() {
	s.UpdateData(nil, trend.Stats{})
}

// updateAutoScale calculates axis ranges from the display buffer.
func (s *ScopeWidget) updateAutoScale() {
	if len(s.display) == 0 {
		s.yMin = 20.0
		s.yMax = 30.0
		s.xMin = time.Now()
		s.xMax = s.xMin.Add(s.window)
		return
	}

	s.yMin = s.display[0].RawC
	s.yMax = s.display[0].RawC
	for _, r := range s.display {
		s.yMin = min(s.yMin, r.RawC, r.FilteredC)
		s.yMax = max(s.yMax, r.RawC, r.FilteredC)
	}

	// Add 10% margin, at least half a degree
	span := s.yMax - s.yMin
	margin := max(span*0.1, 0.5)
	s.yMin -= margin
	s.yMax += margin

	s.xMin = s.display[0].Timestamp
	s.xMax = s.display[len(s.display)-1].Timestamp
	if s.xMax.Sub(s.xMin) < s.window {
		s.xMax = s.xMin.Add(s.window)
	}
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	grid := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &scopeRenderer{
		scope:   s,
		grid:    grid,
		objects: []fyne.CanvasObject{grid},
	}
}
