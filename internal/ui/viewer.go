package ui

import "tsp/internal/domain"

// Viewer displays a shard plan in an interactive TUI
type Viewer interface {
	View(plan *domain.Plan) error
}

var _ Viewer = (*ShardViewer)(nil)
