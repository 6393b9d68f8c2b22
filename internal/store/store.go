// Package store persists plots as their list of expressions.
package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("plot not found")

// Plot is the persisted form of a plot. Only accepted expressions are
// stored; parsed trees and samples are rebuilt on load.
type Plot struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Expressions []string  `json:"expressions"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Summary is a List entry.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Graphs    int       `json:"graphs"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Store interface {
	Load(ctx context.Context, id string) (*Plot, error)
	Save(ctx context.Context, p *Plot) error
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, id string) error
}
