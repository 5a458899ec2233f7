package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/govitals/pkg/config"
	"github.com/itohio/govitals/pkg/device"
	"github.com/itohio/govitals/pkg/scope"
	"github.com/itohio/govitals/pkg/trend"
	"go.uber.org/zap"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		simFlag    = flag.Bool("sim", false, "Run the firmware in-process on simulated hardware instead of a serial port")
		pollFlag   = flag.Duration("poll", 0, "Status poll interval (overrides config)")
		debugFlag  = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	logger, err := newLogger(*debugFlag)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.String("path", *configFlag), zap.Error(err))
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	// Override poll interval if provided via command line
	if *pollFlag > 0 {
		cfg.Poll.Interval = *pollFlag
	}

	// Create Fyne application
	application := app.NewWithID("com.itohio.govitals")

	window := application.NewWindow("Silicon Vitals Monitor")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		log:        logger,
		trend:      trend.New(cfg.Poll.Window),
		window:     window,
		useSim:     *simFlag,
	}

	toolbar := createToolbar(state)

	state.scopeWidget = scope.New(cfg.Poll.Window)
	hookScope(state)

	content := container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		state.scopeWidget,
	)

	window.SetContent(content)
	window.SetOnClosed(func() {
		closeChain(state.chain)
		state.chain = nil
	})
	window.ShowAndRun()
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	return cfg.Build()
}

// appState holds the application state.
type appState struct {
	cfg         *config.Config
	configPath  string
	log         *zap.Logger
	device      device.Device
	trend       *trend.Trend
	scopeWidget *scope.ScopeWidget
	window      fyne.Window
	useSim      bool
	chain       *chain // Current acquisition chain (nil if not connected)

	connectBtn *widget.Button
	statusBtn  *widget.Button
	resetBtn   *widget.Button
	dieBtns    []*widget.Button
}

// createToolbar creates the application toolbar with connect, status, reset,
// settings and, in simulation mode, die controls.
func createToolbar(state *appState) fyne.CanvasObject {
	state.connectBtn = widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})

	state.statusBtn = widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() {
		sendCommand(state, device.CmdStatus)
	})
	state.statusBtn.Disable()

	state.resetBtn = widget.NewButtonWithIcon("", theme.MediaReplayIcon(), func() {
		sendCommand(state, device.CmdReset)
		state.trend.Clear()
		state.scopeWidget.Clear()
	})
	state.resetBtn.Disable()

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	left := container.NewHBox(state.connectBtn, state.statusBtn, state.resetBtn, settingsBtn)
	if !state.useSim {
		return container.NewBorder(nil, nil, left, nil, nil)
	}

	return container.NewBorder(nil, nil, left, container.NewHBox(createDieControls(state)...), nil)
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.device != nil && state.device.IsConnected() {
		disconnect(state)
		return
	}

	var dev device.Device
	if state.useSim {
		dev = device.NewSim(state.cfg, state.log)
	} else {
		dev = device.New(state.cfg.Serial.Port, state.cfg.Serial.Baud, device.DefaultBufferSize, state.log)
	}

	if err := dev.Connect(); err != nil {
		if state.useSim {
			dialog.ShowError(fmt.Errorf("failed to start simulated device: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	state.device = dev

	state.chain = startChain(state, dev)

	state.statusBtn.Enable()
	state.resetBtn.Enable()
	setDieControls(state, true)
}

// disconnect tears down the acquisition chain and resets the toolbar.
func disconnect(state *appState) {
	closeChain(state.chain)
	state.chain = nil
	state.device = nil

	state.statusBtn.Disable()
	state.resetBtn.Disable()
	setDieControls(state, false)
	state.log.Info("disconnected")
}

// sendCommand sends a console command, reporting failures in a dialog.
func sendCommand(state *appState, cmd string) {
	if state.device == nil || !state.device.IsConnected() {
		return
	}
	if err := state.device.Send(cmd); err != nil {
		dialog.ShowError(fmt.Errorf("failed to send %s: %w", cmd, err), state.window)
	}
}

// scopeRefreshInterval throttles scope redraws to ~30 FPS.
const scopeRefreshInterval = 33 * time.Millisecond
