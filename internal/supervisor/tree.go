// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

// Package supervisor assembles the suture supervision tree. A crashed
// service is restarted with backoff instead of taking the process down.
package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/toweratlas/toweratlas/internal/logging"
)

// Tree is the root supervisor plus its layers.
type Tree struct {
	root *suture.Supervisor
}

// New builds the tree: an api layer for the HTTP server and a jobs
// layer for schedulers.
func New(api, jobs []suture.Service) *Tree {
	logger := slog.New(logging.NewSlogHandler())
	spec := suture.Spec{
		EventHook:        (&sutureslog.Handler{Logger: logger}).MustHook(),
		FailureDecay:     30,
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
	}

	root := suture.New("toweratlas", spec)

	apiLayer := suture.New("api", spec)
	for _, svc := range api {
		apiLayer.Add(svc)
	}
	root.Add(apiLayer)

	if len(jobs) > 0 {
		jobsLayer := suture.New("jobs", spec)
		for _, svc := range jobs {
			jobsLayer.Add(svc)
		}
		root.Add(jobsLayer)
	}

	return &Tree{root: root}
}

// Serve runs the tree until the context is canceled.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}
