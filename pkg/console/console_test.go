package console

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePort struct {
	in  []byte
	out strings.Builder
}

func (p *fakePort) Buffered() bool { return len(p.in) > 0 }

func (p *fakePort) Receive() byte {
	if len(p.in) == 0 {
		return 0
	}
	b := p.in[0]
	p.in = p.in[1:]
	return b
}

func (p *fakePort) WriteByte(b byte) error { return p.out.WriteByte(b) }
func (p *fakePort) WriteString(s string)   { p.out.WriteString(s) }

type fakeSource struct {
	report Report
	reset  float32
	calls  int
	resets int
}

func (s *fakeSource) Status() Report {
	s.calls++
	return s.report
}

func (s *fakeSource) ResetFilter() float32 {
	s.resets++
	return s.reset
}

func run(input string, src *fakeSource) string {
	p := &fakePort{in: []byte(input)}
	c := New(p, src)
	c.Poll()
	return p.out.String()
}

func TestBanner(t *testing.T) {
	p := &fakePort{}
	New(p, &fakeSource{}).Banner()
	assert.Equal(t, Banner, p.out.String())
	assert.True(t, strings.HasSuffix(p.out.String(), "> "))
}

func TestStatus(t *testing.T) {
	src := &fakeSource{report: Report{Raw: 355, RawC: 25.47, FilteredC: 24.91, SupplyMV: 5006}}

	out := run("status\r", src)

	want := "status\r" +
		"\r\n=== Silicon Vitals Monitor ===\r\n" +
		"Raw Temperature:     25.4 C\r\n" +
		"Filtered Temperature: 24.9 C\r\n" +
		"VCC Voltage:         5.0 V\r\n" +
		"==============================\r\n"
	assert.Equal(t, want, out)
	assert.Equal(t, 1, src.calls)
}

func TestHelp(t *testing.T) {
	out := run("help\n", &fakeSource{})
	assert.Equal(t, "help\n"+helpText, out)
}

func TestReset(t *testing.T) {
	src := &fakeSource{reset: 21.56}
	out := run("reset\r", src)

	assert.Equal(t, 1, src.resets)
	assert.Equal(t, "reset\r\r\nFilter reset: 21.5 C\r\n", out)
}

func TestUnknownCommand(t *testing.T) {
	out := run("foo\r", &fakeSource{})
	assert.Equal(t, "foo\r\r\nUnknown command: foo\r\nType 'help' for available commands.\r\n", out)
}

func TestEmptyLinesAreIgnored(t *testing.T) {
	src := &fakeSource{}
	out := run("\r\n\r\n", src)
	assert.Equal(t, "\r\n\r\n", out)
	assert.Zero(t, src.calls)
}

func TestCRLFRunsOnce(t *testing.T) {
	src := &fakeSource{}
	run("status\r\n", src)
	assert.Equal(t, 1, src.calls)
}

func TestBackspace(t *testing.T) {
	src := &fakeSource{}
	out := run("statuz\bs\r", src)

	assert.Equal(t, 1, src.calls)
	assert.True(t, strings.HasPrefix(out, "statuz\b \bs\r"))

	out = run("\x7f\x7fhelp\r", src)
	assert.True(t, strings.HasPrefix(out, "\x7f\x7fhelp\r"), "backspace on empty line only echoes")
}

func TestLineOverflowIsTruncated(t *testing.T) {
	p := &fakePort{in: []byte(strings.Repeat("a", 40))}
	c := New(p, &fakeSource{})
	c.Poll()

	assert.Equal(t, strings.Repeat("a", LineSize-1), c.Pending())
	assert.Equal(t, strings.Repeat("a", 40), p.out.String(), "every byte is echoed")
}

func TestAppendTenths(t *testing.T) {
	tests := []struct {
		v    float32
		want string
	}{
		{v: 0, want: "0.0"},
		{v: 23.47, want: "23.4"},
		{v: 23.99, want: "23.9"},
		{v: -0.5, want: "-0.5"},
		{v: -12.34, want: "-12.3"},
		{v: 100, want: "100.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(AppendTenths(nil, tt.v)), "value %v", tt.v)
	}
}

func TestAppendVolts(t *testing.T) {
	tests := []struct {
		mv   uint16
		want string
	}{
		{mv: 0, want: "0.0"},
		{mv: 5006, want: "5.0"},
		{mv: 3303, want: "3.3"},
		{mv: 4999, want: "4.9"},
		{mv: 1100, want: "1.1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(AppendVolts(nil, tt.mv)))
	}
}
