package device

// Commands understood by the firmware console.
const (
	CmdStatus = "status"
	CmdReset  = "reset"
	CmdHelp   = "help"
)

// Device defines the interface for vitals monitors (real or simulated).
type Device interface {
	Connect() error
	Close() error
	Readings() <-chan Reading
	Send(cmd string) error
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Sim implements Device.
var _ Device = (*Sim)(nil)
