// internal/lobby/persist.go
package lobby

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/imposter/internal/game"
	"github.com/jason-s-yu/imposter/internal/models"
	log "github.com/sirupsen/logrus"
)

const persistTimeout = 5 * time.Second

type pendingWrite struct {
	view   game.LobbyView
	rec    models.LobbyRecord
	code   string
	delete bool
}

// persister writes lobby state in the background. Each lobby has at most one write in
// flight; snapshots arriving meanwhile replace each other so only the newest is written.
type persister struct {
	recorder  Recorder
	snapshots SnapshotCache

	mu      sync.Mutex
	pending map[uuid.UUID]*pendingWrite
	running map[uuid.UUID]bool
}

func newPersister(recorder Recorder, snapshots SnapshotCache) *persister {
	return &persister{
		recorder:  recorder,
		snapshots: snapshots,
		pending:   make(map[uuid.UUID]*pendingWrite),
		running:   make(map[uuid.UUID]bool),
	}
}

func (p *persister) enabled() bool {
	return p.recorder != nil || p.snapshots != nil
}

// enqueue schedules a snapshot write. It is called with the game lock held and never blocks on I/O.
func (p *persister) enqueue(view game.LobbyView, rec models.LobbyRecord) {
	if !p.enabled() {
		return
	}
	p.schedule(rec.ID, &pendingWrite{view: view, rec: rec, code: rec.Code})
}

// drop schedules the removal of a lobby's persisted state after any write in flight.
func (p *persister) drop(id uuid.UUID, code string) {
	if !p.enabled() {
		return
	}
	p.schedule(id, &pendingWrite{code: code, delete: true})
}

func (p *persister) schedule(id uuid.UUID, w *pendingWrite) {
	p.mu.Lock()
	if prev, ok := p.pending[id]; ok && prev.delete {
		p.mu.Unlock()
		return
	}
	p.pending[id] = w
	if p.running[id] {
		p.mu.Unlock()
		return
	}
	p.running[id] = true
	p.mu.Unlock()

	go p.drain(id)
}

func (p *persister) drain(id uuid.UUID) {
	for {
		p.mu.Lock()
		w, ok := p.pending[id]
		if !ok {
			delete(p.running, id)
			p.mu.Unlock()
			return
		}
		delete(p.pending, id)
		p.mu.Unlock()

		if w.delete {
			p.remove(id, w.code)
		} else {
			p.write(w)
		}
	}
}

func (p *persister) write(w *pendingWrite) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if p.recorder != nil {
		if err := p.recorder.SaveLobbyRecord(ctx, w.rec); err != nil {
			log.WithError(err).WithFields(log.Fields{"lobby": w.code, "version": w.rec.Version}).Warn("failed to persist lobby")
		}
	}
	if p.snapshots != nil {
		if err := p.snapshots.PutSnapshot(ctx, w.code, w.view); err != nil {
			log.WithError(err).WithField("lobby", w.code).Warn("failed to cache lobby snapshot")
		}
	}
}

func (p *persister) remove(id uuid.UUID, code string) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if p.recorder != nil {
		if err := p.recorder.DeleteLobbyRecord(ctx, id); err != nil {
			log.WithError(err).WithField("lobby", code).Warn("failed to delete lobby record")
		}
	}
	if p.snapshots != nil {
		if err := p.snapshots.DeleteSnapshot(ctx, code); err != nil {
			log.WithError(err).WithField("lobby", code).Warn("failed to delete lobby snapshot")
		}
	}
}
