package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/plotline/plotline/internal/db"
	"github.com/plotline/plotline/internal/document"
)

// PostgresStore keeps plots in the plots table. The expressions column
// holds the same text as a FileStore plot file.
type PostgresStore struct {
	queries *db.Queries
}

func NewPostgresStore(queries *db.Queries) *PostgresStore {
	return &PostgresStore{queries: queries}
}

func (s *PostgresStore) Load(ctx context.Context, id string) (*Plot, error) {
	row, err := s.queries.GetPlot(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get plot: %w", err)
	}
	return dbPlotToPlot(row)
}

func (s *PostgresStore) Save(ctx context.Context, p *Plot) error {
	text, err := document.FormatExpressions(p.Expressions)
	if err != nil {
		return err
	}
	_, err = s.queries.UpsertPlot(ctx, db.UpsertPlotParams{
		ID:          p.ID,
		Name:        p.Name,
		Expressions: text,
	})
	if err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.queries.ListPlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plots: %w", err)
	}
	summaries := make([]Summary, 0, len(rows))
	for _, row := range rows {
		p, err := dbPlotToPlot(row)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, Summary{ID: p.ID, Name: p.Name, Graphs: len(p.Expressions), UpdatedAt: p.UpdatedAt})
	}
	return summaries, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	n, err := s.queries.DeletePlot(ctx, id)
	if err != nil {
		return fmt.Errorf("delete plot: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func dbPlotToPlot(row db.Plot) (*Plot, error) {
	exprs, err := document.ParseExpressions(row.Expressions)
	if err != nil {
		return nil, err
	}
	return &Plot{
		ID:          row.ID,
		Name:        row.Name,
		Expressions: exprs,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}
