package device

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// DefaultBaudRate matches the firmware's USART0 setting.
	DefaultBaudRate = 9600
	// DefaultBufferSize is the default size for the readings channel buffer.
	DefaultBufferSize = 100
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial represents a connection to the monitor firmware over a serial port.
type Serial struct {
	port     string
	baudRate int
	bufSize  int
	log      *zap.Logger

	conn      serial.Port
	readings  chan Reading
	mu        sync.RWMutex
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool
}

// New creates a Serial device for port. Zero baud and buffer sizes take the defaults.
func New(port string, baudRate int, bufSize int, log *zap.Logger) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		log:      log.With(zap.String("port", port)),
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading reports.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	readings := make(chan Reading, d.bufSize)
	done := make(chan struct{})
	d.conn = port
	d.readings = readings
	d.cancel = cancel
	d.done = done
	d.connected = true

	go func() {
		defer close(done)
		readReports(ctx, port, readings, nil, d.log)
	}()

	d.log.Info("connected", zap.Int("baud", d.baudRate))
	return nil
}

// Close closes the port and waits for the reader to finish. The readings
// channel is closed once the reader exits.
func (d *Serial) Close() error {
	d.mu.Lock()
	if !d.connected {
		d.mu.Unlock()
		return nil
	}

	d.cancel()
	var err error
	if d.conn != nil {
		err = multierr.Append(err, d.conn.Close())
		d.conn = nil
	}
	d.connected = false
	done := d.done
	d.mu.Unlock()

	select {
	case <-done:
	case <-time.After(time.Second):
		err = multierr.Append(err, errors.New("reader did not stop"))
	}

	if err != nil {
		d.log.Warn("close", zap.Error(err))
	}
	return err
}

// Readings returns the channel of parsed status reports for the current
// connection. It is nil before the first Connect.
func (d *Serial) Readings() <-chan Reading {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.readings
}

// Send writes a console command terminated by a carriage return.
func (d *Serial) Send(cmd string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return fmt.Errorf("not connected")
	}

	if _, err := io.WriteString(d.conn, cmd+"\r"); err != nil {
		return fmt.Errorf("failed to send %q: %w", cmd, err)
	}

	return nil
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readReports scans console output from r and publishes every complete
// status report to out. It closes out when r is exhausted or ctx is done.
func readReports(ctx context.Context, r io.Reader, out chan<- Reading, now func() time.Time, log *zap.Logger) {
	defer close(out)
	defer func() {
		if p := recover(); p != nil {
			log.Error("panic in report reader", zap.Any("panic", p))
		}
	}()

	parser := newReportParser(now)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		reading, ok, err := parser.Feed(line)
		if err != nil {
			log.Warn("failed to parse report", zap.String("line", line), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}

		select {
		case out <- reading:
		case <-ctx.Done():
			return
		default:
			log.Warn("readings channel full, dropping reading")
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil && !errors.Is(err, io.ErrClosedPipe) {
		log.Warn("error reading from device", zap.Error(err))
	}
}
