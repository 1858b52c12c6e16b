package store

import (
	"context"
	"fmt"

	"github.com/roach88/retrace/internal/op"
)

// WriteTrace inserts a trace record. Idempotent on id via
// ON CONFLICT DO NOTHING.
func (s *Store) WriteTrace(ctx context.Context, id, name string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO traces (id, name)
		VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, name)
	if err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	return nil
}

// WriteEvents inserts a trace's atomic events inside one transaction.
// Locators are serialized to canonical JSON so replayed bytes are stable.
// Duplicate (trace_id, seq) rows are silently ignored for idempotency.
func (s *Store) WriteEvents(ctx context.Context, traceID string, events []op.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write events: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (trace_id, seq, action, target, source, value, prev)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(trace_id, seq) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write events: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		target, err := op.MarshalCanonical(e.Target)
		if err != nil {
			return fmt.Errorf("write event seq %d: %w", e.Seq, err)
		}
		var source any
		if e.Source != nil {
			b, err := op.MarshalCanonical(*e.Source)
			if err != nil {
				return fmt.Errorf("write event seq %d: %w", e.Seq, err)
			}
			source = string(b)
		}
		if _, err := stmt.ExecContext(ctx, traceID, e.Seq, string(e.Action), string(target), source, e.Value, e.Prev); err != nil {
			return fmt.Errorf("write event seq %d: %w", e.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write events: %w", err)
	}
	return nil
}

// WriteComposite inserts a consolidated operation. Idempotent: writing the
// same (trace, span, kind) again is silently ignored, so re-running an
// interpretation against the same database is safe.
func (s *Store) WriteComposite(ctx context.Context, traceID string, comp *op.Composite) error {
	operands, err := op.MarshalCanonical(comp.Operands)
	if err != nil {
		return fmt.Errorf("write composite: %w", err)
	}
	from, to := comp.Span()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO operations (id, trace_id, kind, seq_from, seq_to, operands)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, comp.ID, traceID, string(comp.Kind), from, to, string(operands))
	if err != nil {
		return fmt.Errorf("write composite: %w", err)
	}
	return nil
}
