package scope

import (
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/itohio/govitals/pkg/device"
	"github.com/itohio/govitals/pkg/trend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptyScale(t *testing.T) {
	test.NewTempApp(t)

	s := New(time.Minute)

	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.Equal(t, 20.0, s.yMin)
	assert.Equal(t, 30.0, s.yMax)
	assert.Equal(t, time.Minute, s.xMax.Sub(s.xMin))
}

func TestUpdateData_AutoScale(t *testing.T) {
	test.NewTempApp(t)

	s := New(time.Minute)
	now := time.Now()
	readings := []device.Reading{
		{Timestamp: now, RawC: 24, FilteredC: 25, SupplyV: 5},
		{Timestamp: now.Add(time.Second), RawC: 27, FilteredC: 25.5, SupplyV: 5},
		{Timestamp: now.Add(2 * time.Second), RawC: 26, FilteredC: 26, SupplyV: 5},
	}
	s.UpdateData(readings, trend.Stats{Count: 3, Last: readings[2]})

	s.mu.RLock()
	assert.InDelta(t, 24-0.5, s.yMin, 1e-9)
	assert.InDelta(t, 27+0.5, s.yMax, 1e-9)
	assert.Equal(t, now, s.xMin)
	assert.Equal(t, now.Add(time.Minute), s.xMax)
	assert.Len(t, s.display, 3)
	s.mu.RUnlock()

	s.Clear()
	s.mu.RLock()
	assert.Len(t, s.display, 0)
	s.mu.RUnlock()
}

func TestUpdateData_LongHistory(t *testing.T) {
	test.NewTempApp(t)

	s := New(time.Second)
	now := time.Now()
	readings := make([]device.Reading, 5000)
	for i := range readings {
		readings[i] = device.Reading{
			Timestamp: now.Add(time.Duration(i) * time.Second),
			RawC:      float64(i % 50),
			FilteredC: 25,
		}
	}
	s.UpdateData(readings, trend.Stats{Count: len(readings), Last: readings[len(readings)-1]})

	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.Len(t, s.display, s.maxDisplayPoints)
	assert.Equal(t, readings[len(readings)-1].Timestamp, s.xMax)
	// 10% of the 49 degree span
	assert.InDelta(t, -4.9, s.yMin, 1e-9)
	assert.InDelta(t, 53.9, s.yMax, 1e-9)
}

func TestRenderer_DrawsCurves(t *testing.T) {
	test.NewTempApp(t)

	s := New(time.Minute)
	s.Resize(fyne.NewSize(600, 400))

	now := time.Now()
	readings := []device.Reading{
		{Timestamp: now, RawC: 24, FilteredC: 25, SupplyV: 5},
		{Timestamp: now.Add(time.Second), RawC: 27, FilteredC: 25.5, SupplyV: 5},
		{Timestamp: now.Add(2 * time.Second), RawC: 26, FilteredC: 26, SupplyV: 5},
	}
	s.UpdateData(readings, trend.Stats{Count: 3, Last: readings[2]})

	r := test.WidgetRenderer(s)
	require.NotNil(t, r)
	r.Refresh()

	// background, 9+11 grid lines with labels, 2+2 curve segments, status
	assert.Len(t, r.Objects(), 1+2*9+2*11+4+1)
	assert.Equal(t, fyne.NewSize(400, 300), r.MinSize())
}

func TestStatusLine(t *testing.T) {
	tests := []struct {
		name  string
		stats trend.Stats
		want  string
	}{
		{
			name:  "warming",
			stats: trend.Stats{Count: 1, RateCPM: 0.2, Last: device.Reading{FilteredC: 25.14, SupplyV: 5}},
			want:  "25.1 °C  +0.20 °C/min  VCC 5.00 V",
		},
		{
			name:  "cooling",
			stats: trend.Stats{Count: 1, RateCPM: -1.5, Last: device.Reading{FilteredC: -3.24, SupplyV: 3.3}},
			want:  "-3.2 °C  -1.50 °C/min  VCC 3.30 V",
		},
		{
			name:  "unknown supply",
			stats: trend.Stats{Count: 1, Last: device.Reading{FilteredC: 25}},
			want:  "25.0 °C  +0.00 °C/min  VCC n/a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusLine(tt.stats))
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0s", formatElapsed(0))
	assert.Equal(t, "30s", formatElapsed(30*time.Second))
	assert.Equal(t, "1.5m", formatElapsed(90*time.Second))
}
