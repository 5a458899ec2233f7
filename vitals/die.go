package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/govitals/pkg/device"
	"github.com/itohio/govitals/pkg/hw"
	"go.uber.org/zap"
)

// dieStep is how far one click heats or cools the simulated die.
const dieStep = 5 // °C

// createDieControls creates the simulated-die buttons: heat, cool and a
// supply brown-out toggle. They stay disabled until connected.
func createDieControls(state *appState) []fyne.CanvasObject {
	heatBtn := widget.NewButtonWithIcon("+5 °C", theme.MoveUpIcon(), func() {
		handleDieStep(state, dieStep)
	})
	coolBtn := widget.NewButtonWithIcon("-5 °C", theme.MoveDownIcon(), func() {
		handleDieStep(state, -dieStep)
	})
	brownoutBtn := widget.NewButtonWithIcon("VCC", theme.WarningIcon(), nil)
	brownoutBtn.OnTapped = func() {
		handleBrownout(state, brownoutBtn)
	}

	state.dieBtns = []*widget.Button{heatBtn, coolBtn, brownoutBtn}
	objects := make([]fyne.CanvasObject, 0, len(state.dieBtns))
	for _, btn := range state.dieBtns {
		btn.Disable()
		objects = append(objects, btn)
	}
	return objects
}

// setDieControls enables or disables the die buttons and resets the
// brown-out indicator.
func setDieControls(state *appState, enabled bool) {
	for _, btn := range state.dieBtns {
		if enabled {
			btn.Enable()
		} else {
			btn.Disable()
		}
		btn.Importance = widget.MediumImportance
		btn.Refresh()
	}
}

// simDie returns the die of the connected simulated device, or nil.
func simDie(state *appState) *hw.Die {
	sim, ok := state.device.(*device.Sim)
	if !ok || !sim.IsConnected() {
		return nil
	}
	return sim.Die()
}

// handleDieStep changes the die temperature by delta.
func handleDieStep(state *appState, delta float32) {
	die := simDie(state)
	if die == nil {
		return
	}
	t := die.Temperature() + delta
	die.SetTemperature(t)
	state.log.Info("die temperature", zap.Float32("celsius", t))
}

// handleBrownout toggles the supply between the configured rail and zero,
// which the firmware reports as an unknown supply.
func handleBrownout(state *appState, btn *widget.Button) {
	die := simDie(state)
	if die == nil {
		return
	}

	if btn.Importance == widget.HighImportance {
		die.SetSupply(state.cfg.Sim.SupplyMV)
		btn.Importance = widget.MediumImportance
	} else {
		die.SetSupply(0)
		btn.Importance = widget.HighImportance
	}
	btn.Refresh()
	state.log.Info("supply", zap.Bool("brownout", btn.Importance == widget.HighImportance))
}
