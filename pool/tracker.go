package pool

import (
	"sync"

	"github.com/lxops/cliworker/logger"
	"github.com/lxops/cliworker/procutil"
)

// ProcessTracker lets a CLI-spawning work function publish and clear the PID
// of the child process it is currently waiting on, so Manager can kill the
// whole tree on abort. A work function that never spawns a process can
// ignore the tracker it is handed — Publish/Clear are no-ops on a nil
// receiver.
type ProcessTracker struct {
	registry *pidRegistry
	worker   string
}

// Publish records pid against this tracker's worker name. Call it
// immediately after starting the child, before blocking on it. If the
// pool's bulk kill has already run by the time this is called — the child
// started just after shutdown was announced — the process is killed
// immediately instead of being registered, so a late-starting child is
// never left to run to completion unsupervised.
func (t *ProcessTracker) Publish(pid int) {
	if t == nil || t.registry == nil {
		return
	}
	t.registry.set(t.worker, pid)
}

// Clear removes this tracker's entry. Call it once the child has been
// waited on, success or failure.
func (t *ProcessTracker) Clear() {
	if t == nil || t.registry == nil {
		return
	}
	t.registry.clear(t.worker)
}

// pidRegistry is the shared map from worker name to the PID of its
// currently-live child process. Each worker writes only its own key; the
// manager reads the full map during a kill.
type pidRegistry struct {
	mu           sync.Mutex
	pids         map[string]int
	shuttingDown bool
	log          *logger.Logger
}

func newPIDRegistry(log *logger.Logger) *pidRegistry {
	return &pidRegistry{pids: make(map[string]int), log: log}
}

func (r *pidRegistry) set(worker string, pid int) {
	r.mu.Lock()
	late := r.shuttingDown
	if !late {
		r.pids[worker] = pid
	}
	r.mu.Unlock()

	if late {
		if err := procutil.KillProcessGroup(pid); err != nil {
			r.log.Warnf("killing late-published child process %d during shutdown: %v", pid, err)
		}
	}
}

func (r *pidRegistry) clear(worker string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pids, worker)
}

// killAll marks the registry as shutting down — so any process published
// from this point on is killed on publish rather than merely recorded — and
// kills every process tracked so far.
func (r *pidRegistry) killAll() error {
	r.mu.Lock()
	r.shuttingDown = true
	pids := make([]int, 0, len(r.pids))
	for _, pid := range r.pids {
		pids = append(pids, pid)
	}
	r.pids = make(map[string]int)
	r.mu.Unlock()

	return procutil.KillMany(pids)
}
