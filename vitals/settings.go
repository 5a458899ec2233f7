package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/govitals/pkg/device"
	"go.uber.org/zap"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createPollTab(state),
		createFilterTab(state),
		createCalibrationTab(state),
		createSimTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// saveConfig writes the configuration back to the file it was loaded from.
func saveConfig(state *appState) {
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return
	}
	state.log.Info("configuration saved", zap.String("path", state.configPath))
}

// reconnect restarts the acquisition chain so new settings take effect.
func reconnect(state *appState) {
	if state.device == nil || !state.device.IsConnected() {
		return
	}
	disconnect(state)
	handleConnect(state)
}

func floatEntry(v float32, prec int) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.FormatFloat(float64(v), 'f', prec, 32))
	return e
}

func parseFloat32(e *widget.Entry, dst *float32) {
	if v, err := strconv.ParseFloat(e.Text, 32); err == nil {
		*dst = float32(v)
	}
}

func durationEntry(d time.Duration) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(d.String())
	return e
}

func parseDuration(e *widget.Entry, dst *time.Duration) {
	if d, err := time.ParseDuration(e.Text); err == nil && d > 0 {
		*dst = d
	}
}

func intEntry(v int) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.Itoa(v))
	return e
}

func parseInt(e *widget.Entry, dst *int) {
	if v, err := strconv.Atoi(e.Text); err == nil && v > 0 {
		*dst = v
	}
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := device.Ports()
	if err != nil {
		state.log.Warn("failed to list serial ports", zap.Error(err))
	}

	portOptions := make([]string, 0, len(ports)+1)
	portMap := make(map[string]string) // Map display name to actual port name
	currentDisplay := ""
	for _, port := range ports {
		displayName := port.Name
		if port.Description != "" && port.Description != port.Name {
			displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
		}
		portOptions = append(portOptions, displayName)
		portMap[displayName] = port.Name
		if port.Name == state.cfg.Serial.Port {
			currentDisplay = displayName
		}
	}

	// Add current port if not in list
	if currentDisplay == "" && state.cfg.Serial.Port != "" {
		currentDisplay = state.cfg.Serial.Port
		portOptions = append(portOptions, currentDisplay)
		portMap[currentDisplay] = currentDisplay
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}
	baudEntry := intEntry(state.cfg.Serial.Baud)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			old := state.cfg.Serial
			if portSelect.Selected != "" {
				selected := portMap[portSelect.Selected]
				if selected == "" {
					selected = portSelect.Selected
				}
				state.cfg.Serial.Port = selected
			}
			parseInt(baudEntry, &state.cfg.Serial.Baud)
			saveConfig(state)

			if !state.useSim && old != state.cfg.Serial {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createPollTab creates the Poll configuration tab.
func createPollTab(state *appState) *container.TabItem {
	intervalEntry := durationEntry(state.cfg.Poll.Interval)
	windowEntry := durationEntry(state.cfg.Poll.Window)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Status Interval", Widget: intervalEntry},
			{Text: "History Window", Widget: windowEntry},
		},
		OnSubmit: func() {
			parseDuration(intervalEntry, &state.cfg.Poll.Interval)
			parseDuration(windowEntry, &state.cfg.Poll.Window)
			saveConfig(state)

			state.trend.SetWindow(state.cfg.Poll.Window)
			reconnect(state)
		},
	}

	return container.NewTabItem("Poll", form)
}

// createFilterTab creates the Kalman filter tab. The values only reach the
// simulated device; real hardware keeps its compiled-in tuning.
func createFilterTab(state *appState) *container.TabItem {
	qEntry := floatEntry(state.cfg.Filter.ProcessNoise, 4)
	rEntry := floatEntry(state.cfg.Filter.MeasurementNoise, 3)
	pEntry := floatEntry(state.cfg.Filter.InitialCovariance, 3)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Process Noise Q (°C²)", Widget: qEntry},
			{Text: "Measurement Noise R (°C²)", Widget: rEntry},
			{Text: "Initial Covariance", Widget: pEntry},
		},
		OnSubmit: func() {
			parseFloat32(qEntry, &state.cfg.Filter.ProcessNoise)
			parseFloat32(rEntry, &state.cfg.Filter.MeasurementNoise)
			parseFloat32(pEntry, &state.cfg.Filter.InitialCovariance)
			saveConfig(state)

			if state.useSim {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Filter", form)
}

// createCalibrationTab creates the temperature calibration tab.
func createCalibrationTab(state *appState) *container.TabItem {
	offsetEntry := floatEntry(state.cfg.Calibration.Offset, 2)
	gainEntry := floatEntry(state.cfg.Calibration.Gain, 3)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Offset (counts)", Widget: offsetEntry},
			{Text: "Gain (counts/°C)", Widget: gainEntry},
		},
		OnSubmit: func() {
			parseFloat32(offsetEntry, &state.cfg.Calibration.Offset)
			parseFloat32(gainEntry, &state.cfg.Calibration.Gain)
			saveConfig(state)

			if state.useSim {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Calibration", form)
}

// createSimTab creates the simulated device configuration tab.
func createSimTab(state *appState) *container.TabItem {
	ambientEntry := floatEntry(state.cfg.Sim.AmbientC, 1)
	driftEntry := floatEntry(state.cfg.Sim.Drift, 4)
	supplyEntry := floatEntry(state.cfg.Sim.SupplyMV, 0)
	noiseEntry := floatEntry(state.cfg.Sim.NoiseCounts, 2)
	stepEntry := durationEntry(state.cfg.Sim.StepInterval)
	sampleEveryEntry := intEntry(state.cfg.Sim.SampleEvery)
	convertPollsEntry := intEntry(state.cfg.Sim.ConvertPolls)
	seedEntry := widget.NewEntry()
	seedEntry.SetText(strconv.FormatUint(state.cfg.Sim.Seed, 10))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Ambient (°C)", Widget: ambientEntry},
			{Text: "Drift (°C/conversion)", Widget: driftEntry},
			{Text: "Supply (mV)", Widget: supplyEntry},
			{Text: "Noise (counts)", Widget: noiseEntry},
			{Text: "Loop Step", Widget: stepEntry},
			{Text: "Sample Every (steps)", Widget: sampleEveryEntry},
			{Text: "Conversion Polls", Widget: convertPollsEntry},
			{Text: "Seed", Widget: seedEntry},
		},
		OnSubmit: func() {
			parseFloat32(ambientEntry, &state.cfg.Sim.AmbientC)
			parseFloat32(driftEntry, &state.cfg.Sim.Drift)
			parseFloat32(supplyEntry, &state.cfg.Sim.SupplyMV)
			parseFloat32(noiseEntry, &state.cfg.Sim.NoiseCounts)
			parseDuration(stepEntry, &state.cfg.Sim.StepInterval)
			parseInt(sampleEveryEntry, &state.cfg.Sim.SampleEvery)
			parseInt(convertPollsEntry, &state.cfg.Sim.ConvertPolls)
			if seed, err := strconv.ParseUint(seedEntry.Text, 10, 64); err == nil {
				state.cfg.Sim.Seed = seed
			}
			saveConfig(state)

			if state.useSim {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Sim", form)
}
