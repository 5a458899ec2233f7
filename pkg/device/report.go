package device

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/itohio/govitals/pkg/console"
)

// Reading is one parsed status report.
type Reading struct {
	Timestamp time.Time
	RawC      float64 // Unfiltered temperature (°C)
	FilteredC float64 // Kalman estimate (°C)
	SupplyV   float64 // Supply voltage (V), 0 when the device could not measure it
}

// SupplyKnown reports whether the device produced a supply estimate.
func (r Reading) SupplyKnown() bool {
	return r.SupplyV > 0
}

const (
	fieldRaw = 1 << iota
	fieldFiltered
	fieldSupply

	fieldAll = fieldRaw | fieldFiltered | fieldSupply
)

var (
	reportHeader  = strings.TrimSpace(console.ReportHeader)
	reportTrailer = strings.TrimSpace(console.ReportTrailer)
	prefixRaw     = strings.TrimSpace(console.ReportRaw)
	prefixFilter  = strings.TrimSpace(console.ReportFilter)
	prefixSupply  = strings.TrimSpace(console.ReportSupply)
)

// reportParser assembles status reports from trimmed console lines. Lines
// outside a report (echo, banner, help text) are ignored.
type reportParser struct {
	now    func() time.Time
	active bool
	fields int
	cur    Reading
}

func newReportParser(now func() time.Time) *reportParser {
	if now == nil {
		now = time.Now
	}
	return &reportParser{now: now}
}

// Feed consumes one line. It returns a reading once a complete report has been seen.
func (p *reportParser) Feed(line string) (Reading, bool, error) {
	switch {
	case line == reportHeader:
		p.active = true
		p.fields = 0
		p.cur = Reading{}
		return Reading{}, false, nil
	case !p.active:
		return Reading{}, false, nil
	case line == reportTrailer:
		p.active = false
		if p.fields != fieldAll {
			return Reading{}, false, fmt.Errorf("incomplete report: fields %03b", p.fields)
		}
		p.cur.Timestamp = p.now()
		return p.cur, true, nil
	}

	var err error
	switch {
	case strings.HasPrefix(line, prefixRaw):
		p.cur.RawC, err = parseValue(line[len(prefixRaw):], "C")
		p.fields |= fieldRaw
	case strings.HasPrefix(line, prefixFilter):
		p.cur.FilteredC, err = parseValue(line[len(prefixFilter):], "C")
		p.fields |= fieldFiltered
	case strings.HasPrefix(line, prefixSupply):
		p.cur.SupplyV, err = parseValue(line[len(prefixSupply):], "V")
		p.fields |= fieldSupply
	default:
		// the header line is shared with the banner; anything else ends the report
		p.active = false
		return Reading{}, false, nil
	}
	if err != nil {
		p.active = false
		return Reading{}, false, err
	}
	return Reading{}, false, nil
}

// parseValue parses "  23.4 C" style values.
func parseValue(s, unit string) (float64, error) {
	s = strings.TrimSpace(s)
	num, ok := strings.CutSuffix(s, unit)
	if !ok {
		return 0, fmt.Errorf("invalid value %q: missing unit %s", s, unit)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return v, nil
}

// ParseReport parses console output containing one status report.
func ParseReport(text string) (Reading, error) {
	p := newReportParser(nil)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r, ok, err := p.Feed(line)
		if err != nil {
			return Reading{}, err
		}
		if ok {
			return r, nil
		}
	}
	return Reading{}, fmt.Errorf("no complete report found")
}
