package core

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Warning describes a room that just entered the Warned state.
type Warning struct {
	Room      *Room
	Remaining time.Duration
}

// Monitor periodically evaluates non-system rooms and reclaims the ones
// that stay below the minimum population for too long. Sweep mutates the
// directory, so it must run on the hub goroutine like every other mutation.
type Monitor struct {
	dir        *Directory
	clk        clock.Clock
	minMembers int
	warnAfter  time.Duration
	closeAfter time.Duration
}

// NewMonitor builds an activity monitor over the directory.
func NewMonitor(dir *Directory, clk clock.Clock, minMembers int, warnAfter, closeAfter time.Duration) *Monitor {
	return &Monitor{
		dir:        dir,
		clk:        clk,
		minMembers: minMembers,
		warnAfter:  warnAfter,
		closeAfter: closeAfter,
	}
}

// Sweep re-evaluates every room from current state. It is idempotent: a
// room closed between two ticks is simply absent on the next one.
//
// Per room the state machine is: Active while activity is recent or the
// population is at least the minimum; Warned once idle time passes the
// warning delay (one warning per entry); Closed once idle time passes the
// cleanup delay. Recovered rooms re-arm their warning.
func (m *Monitor) Sweep() (warned []Warning, closed []*Room) {
	now := m.clk.Now()
	for _, room := range m.dir.List() {
		if room.IsSystem() {
			continue
		}
		idle := now.Sub(room.LastActivity)
		lowActivity := room.MemberCount() < m.minMembers

		if !lowActivity || idle < m.warnAfter {
			// Back to Active; a later low-activity period may warn again.
			room.warned = false
			continue
		}

		if idle >= m.closeAfter {
			m.dir.remove(room.ID)
			closed = append(closed, room)
			continue
		}

		if !room.warned {
			room.warned = true
			warned = append(warned, Warning{Room: room, Remaining: m.closeAfter - idle})
		}
	}
	return warned, closed
}
