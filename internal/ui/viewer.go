package ui

import "mvmtest/internal/domain"

// Viewer displays the failures of a stored run
type Viewer interface {
	View(record *domain.RunRecord) error
}

var _ Viewer = (*FailureViewer)(nil)
