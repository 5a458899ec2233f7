package device

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Poll asks dev for a status report every interval until ctx is done.
// Send failures are logged and polling continues.
func Poll(ctx context.Context, dev Device, interval time.Duration, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !dev.IsConnected() {
				continue
			}
			if err := dev.Send(CmdStatus); err != nil {
				log.Warn("status request failed", zap.Error(err))
			}
		}
	}
}
