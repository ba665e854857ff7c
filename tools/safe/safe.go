package safe

import "VConnct/logger"

// Go starts a goroutine that recovers from panics, so background work
// (delivery fan-out, event publishing) can never take the process down.
func Go(f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("[safe.Go] panic recovered: %v", r)
			}
		}()
		f()
	}()
}
