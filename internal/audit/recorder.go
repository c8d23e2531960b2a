// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/toweratlas/toweratlas/internal/logging"
	"github.com/toweratlas/toweratlas/internal/metrics"
)

// Recorder accepts events on a buffered channel and writes them from a
// single background goroutine. Record never blocks the caller: if the
// buffer is full the event is dropped and counted, because audit
// pressure must not slow the operation being audited.
type Recorder struct {
	store  Store
	events chan *Event

	wg       sync.WaitGroup
	stopOnce sync.Once
	done     chan struct{}
}

// NewRecorder starts a Recorder with the given buffer capacity.
func NewRecorder(store Store, bufferSize int) *Recorder {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	r := &Recorder{
		store:  store,
		events: make(chan *Event, bufferSize),
		done:   make(chan struct{}),
	}
	r.wg.Add(1)
	go r.run()
	return r
}

// Record enqueues an event, filling in ID and timestamp when unset.
func (r *Recorder) Record(e *Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.Severity == "" {
		e.Severity = SeverityInfo
	}

	select {
	case r.events <- e:
	default:
		metrics.RecordAuditDrop()
		logging.Warn().
			Str("action", e.Action).
			Str("category", string(e.Category)).
			Msg("Audit buffer full, event dropped")
	}
}

func (r *Recorder) run() {
	defer r.wg.Done()
	for {
		select {
		case e := <-r.events:
			r.write(e)
		case <-r.done:
			// Drain whatever is buffered before exiting.
			for {
				select {
				case e := <-r.events:
					r.write(e)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(e *Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.store.Write(ctx, e); err != nil {
		logging.Error().
			Err(err).
			Str("action", e.Action).
			Msg("Failed to write audit event")
	}
}

// Close stops the recorder after draining buffered events.
func (r *Recorder) Close() {
	r.stopOnce.Do(func() {
		close(r.done)
	})
	r.wg.Wait()
}
