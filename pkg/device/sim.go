package device

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/itohio/govitals/pkg/config"
	"github.com/itohio/govitals/pkg/hw"
	"github.com/itohio/govitals/pkg/vitals"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Sim runs the monitor firmware in-process on simulated hardware. Its
// console output is parsed exactly like a serial connection's.
type Sim struct {
	cfg *config.Config
	log *zap.Logger

	mu        sync.RWMutex
	die       *hw.Die
	uart      *hw.SimUART
	readings  chan Reading
	cancel    context.CancelFunc
	out       *io.PipeReader
	in        *io.PipeWriter
	loopDone  chan struct{}
	readDone  chan struct{}
	connected bool
}

// NewSim creates a simulated device. A nil cfg uses config.Default.
func NewSim(cfg *config.Config, log *zap.Logger) *Sim {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sim{
		cfg: cfg,
		log: log.With(zap.String("device", "sim")),
	}
}

// Connect boots the firmware and starts its main loop.
func (s *Sim) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return fmt.Errorf("already connected")
	}

	die := hw.NewDie(s.cfg.Die())
	adcDev := hw.NewSimADC(die.Sample)
	adcDev.ConvertPolls = s.cfg.Sim.ConvertPolls

	out, in := io.Pipe()
	uartDev := &hw.SimUART{
		OnTransmit: func(b uint8) {
			// fails only after Close, when nobody is listening
			_, _ = in.Write([]byte{b})
		},
	}
	irq := &hw.SimIRQ{}

	app := vitals.New(uartDev, adcDev, irq, s.cfg.Options())
	uartDev.Attach(irq, app.UART.HandleInterrupt)

	ctx, cancel := context.WithCancel(context.Background())
	readings := make(chan Reading, DefaultBufferSize)
	readDone := make(chan struct{})
	loopDone := make(chan struct{})

	go func() {
		defer close(readDone)
		readReports(ctx, out, readings, nil, s.log)
	}()

	app.Boot()

	go func() {
		defer close(loopDone)
		s.loop(ctx, app)
	}()

	s.die = die
	s.uart = uartDev
	s.readings = readings
	s.cancel = cancel
	s.out = out
	s.in = in
	s.loopDone = loopDone
	s.readDone = readDone
	s.connected = true

	s.log.Info("connected",
		zap.Float32("ambient_c", s.cfg.Sim.AmbientC),
		zap.Float32("supply_mv", s.cfg.Sim.SupplyMV),
		zap.Int("sample_every", s.cfg.Sim.SampleEvery),
	)
	return nil
}

// loop is the firmware main loop, paced by the configured step interval.
func (s *Sim) loop(ctx context.Context, app *vitals.App) {
	interval := s.cfg.Sim.StepInterval
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.Step()
		}
	}
}

// Close stops the main loop and the report reader. The readings channel is
// closed once the reader exits.
func (s *Sim) Close() error {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return nil
	}

	s.cancel()
	s.connected = false
	out, in := s.out, s.in
	loopDone, readDone := s.loopDone, s.readDone
	s.mu.Unlock()

	// Unblock a transmit stuck on the pipe before waiting for the loop.
	err := out.Close()
	<-loopDone
	err = multierr.Append(err, in.Close())
	<-readDone

	if err != nil {
		s.log.Warn("close", zap.Error(err))
	}
	return err
}

// Readings returns the channel of parsed status reports for the current
// connection. It is nil before the first Connect.
func (s *Sim) Readings() <-chan Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readings
}

// Send types cmd followed by a carriage return into the firmware's receiver.
func (s *Sim) Send(cmd string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.connected {
		return fmt.Errorf("not connected")
	}

	line := cmd + "\r"
	for i := 0; i < len(line); i++ {
		if !s.uart.Inject(line[i]) {
			return fmt.Errorf("failed to send %q: receiver disabled", cmd)
		}
	}
	return nil
}

// IsConnected returns whether the device is currently connected.
func (s *Sim) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Die returns the simulated silicon so callers can heat it or sag its supply.
// It is nil until Connect.
func (s *Sim) Die() *hw.Die {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.die
}
