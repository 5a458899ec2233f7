// Package console implements the line-oriented text protocol spoken over the
// serial port: echo, line editing and the status/help/reset commands.
//
// It avoids fmt so that it stays small on an 8-bit target.
package console

import "strconv"

// LineSize is the line buffer size; one byte is reserved, so a line holds at
// most LineSize-1 characters. Extra characters are echoed but ignored.
const LineSize = 32

const (
	Banner = "\r\n\r\n" +
		"=== Silicon Vitals Monitor ===\r\n" +
		"ATmega328P Internal Sensor Monitor\r\n" +
		"Type 'help' for commands.\r\n" +
		"> "

	ReportHeader  = "\r\n=== Silicon Vitals Monitor ===\r\n"
	ReportRaw     = "Raw Temperature:     "
	ReportFilter  = "Filtered Temperature: "
	ReportSupply  = "VCC Voltage:         "
	ReportTrailer = "==============================\r\n"

	helpText = "\r\n=== Available Commands ===\r\n" +
		"status  - Display sensor readings\r\n" +
		"reset   - Reseed the temperature filter\r\n" +
		"help    - Show this help message\r\n" +
		"===========================\r\n"
)

// Report is what the status command prints.
type Report struct {
	Raw       uint16  // raw temperature count
	RawC      float32 // unfiltered temperature (°C)
	FilteredC float32 // filter estimate after folding in RawC (°C)
	SupplyMV  uint16  // supply estimate (mV), 0 when unknown
}

// Source provides the readings behind the commands.
type Source interface {
	// Status samples the sensors, updates the filter and returns the result.
	Status() Report
	// ResetFilter reseeds the filter from a fresh sample and returns the new estimate.
	ResetFilter() float32
}

// Port is the byte stream the console talks over.
type Port interface {
	Buffered() bool
	Receive() byte
	WriteByte(b byte) error
	WriteString(s string)
}

// Console holds the line being edited.
type Console struct {
	port Port
	src  Source
	line [LineSize]byte
	n    int
	num  [16]byte
}

// New creates a console on port answering from src.
func New(port Port, src Source) *Console {
	return &Console{port: port, src: src}
}

// Banner prints the startup greeting and prompt.
func (c *Console) Banner() {
	c.port.WriteString(Banner)
}

// Poll consumes every byte currently buffered on the port.
func (c *Console) Poll() {
	for c.port.Buffered() {
		c.Feed(c.port.Receive())
	}
}

// Feed processes one received byte. Every byte is echoed.
func (c *Console) Feed(b byte) {
	c.port.WriteByte(b)

	switch {
	case b == '\r' || b == '\n':
		if c.n > 0 {
			c.Execute(c.line[:c.n])
			c.n = 0
		}
	case b == '\b' || b == 0x7F:
		if c.n > 0 {
			c.n--
			c.port.WriteString(" \b")
		}
	case c.n < LineSize-1:
		c.line[c.n] = b
		c.n++
	}
}

// Pending returns the partially typed line.
func (c *Console) Pending() string {
	return string(c.line[:c.n])
}

// Execute runs a complete command line.
func (c *Console) Execute(cmd []byte) {
	switch string(cmd) {
	case "status":
		c.status()
	case "help":
		c.port.WriteString(helpText)
	case "reset":
		est := c.src.ResetFilter()
		c.port.WriteString("\r\nFilter reset: ")
		c.writeTenths(est)
		c.port.WriteString(" C\r\n")
	default:
		if len(cmd) == 0 {
			return
		}
		c.port.WriteString("\r\nUnknown command: ")
		for _, b := range cmd {
			c.port.WriteByte(b)
		}
		c.port.WriteString("\r\nType 'help' for available commands.\r\n")
	}
}

func (c *Console) status() {
	r := c.src.Status()

	c.port.WriteString(ReportHeader)
	c.port.WriteString(ReportRaw)
	c.writeTenths(r.RawC)
	c.port.WriteString(" C\r\n")

	c.port.WriteString(ReportFilter)
	c.writeTenths(r.FilteredC)
	c.port.WriteString(" C\r\n")

	c.port.WriteString(ReportSupply)
	c.writeVolts(r.SupplyMV)
	c.port.WriteString(" V\r\n")
	c.port.WriteString(ReportTrailer)
}

func (c *Console) write(b []byte) {
	for _, x := range b {
		c.port.WriteByte(x)
	}
}

// writeTenths prints v truncated to one decimal place.
func (c *Console) writeTenths(v float32) {
	c.write(AppendTenths(c.num[:0], v))
}

func (c *Console) writeVolts(mv uint16) {
	c.write(AppendVolts(c.num[:0], mv))
}

// AppendTenths appends v truncated toward zero to one decimal, e.g. 23.47 -> "23.4",
// -0.5 -> "-0.5".
func AppendTenths(dst []byte, v float32) []byte {
	tenths := int32(v * 10)
	whole := tenths / 10
	frac := tenths % 10
	if frac < 0 {
		frac = -frac
	}
	if v < 0 && whole == 0 {
		dst = append(dst, '-')
	}
	dst = strconv.AppendInt(dst, int64(whole), 10)
	dst = append(dst, '.')
	return strconv.AppendInt(dst, int64(frac), 10)
}

// AppendVolts appends millivolts as volts with one decimal, truncated.
func AppendVolts(dst []byte, mv uint16) []byte {
	dst = strconv.AppendUint(dst, uint64(mv/1000), 10)
	dst = append(dst, '.')
	return strconv.AppendUint(dst, uint64(mv%1000/100), 10)
}
