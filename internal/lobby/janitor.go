// internal/lobby/janitor.go
package lobby

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Sweep removes every lobby whose players have all been unreachable since before
// now-abandonAfter. It returns the number of removed lobbies.
func (s *Store) Sweep(now time.Time, abandonAfter time.Duration) int {
	cutoff := now.Add(-abandonAfter)
	removed := 0
	for _, l := range s.List() {
		if l.Game.CloseIfAbandoned(cutoff) {
			s.remove(l, true)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps abandoned lobbies every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval, abandonAfter time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Sweep(now, abandonAfter); n > 0 {
				log.WithField("removed", n).Info("janitor removed abandoned lobbies")
			}
		}
	}
}
