package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/retrace/internal/op"
)

// ErrTraceNotFound is returned when a trace id has no record.
var ErrTraceNotFound = errors.New("trace not found")

// TraceInfo describes a stored trace.
type TraceInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// StoredComposite is a consolidated operation read back from the log.
type StoredComposite struct {
	ID       string       `json:"id"`
	Kind     op.Kind      `json:"kind"`
	SeqFrom  int64        `json:"seq_from"`
	SeqTo    int64        `json:"seq_to"`
	Operands []op.Locator `json:"operands"`
}

// GetTrace returns the trace record for id, or ErrTraceNotFound.
func (s *Store) GetTrace(ctx context.Context, id string) (*TraceInfo, error) {
	var info TraceInfo
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at FROM traces WHERE id = ?
	`, id).Scan(&info.ID, &info.Name, &info.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrTraceNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get trace: %w", err)
	}
	return &info, nil
}

// ListTraces returns all stored traces ordered by creation time, then id
// for a stable tiebreak.
func (s *Store) ListTraces(ctx context.Context) ([]TraceInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at FROM traces ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list traces: %w", err)
	}
	defer rows.Close()

	var traces []TraceInfo
	for rows.Next() {
		var info TraceInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("list traces: %w", err)
		}
		traces = append(traces, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list traces: %w", err)
	}
	return traces, nil
}

// ReplayEvents reads a trace's atomic events back in sequence order.
// Replay of the same trace always yields the same events in the same
// order; ORDER BY seq, never insertion or wall-clock order.
func (s *Store) ReplayEvents(ctx context.Context, traceID string) ([]op.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, action, target, source, value, prev
		FROM events
		WHERE trace_id = ?
		ORDER BY seq
	`, traceID)
	if err != nil {
		return nil, fmt.Errorf("replay events: %w", err)
	}
	defer rows.Close()

	var events []op.Event
	for rows.Next() {
		var (
			e      op.Event
			action string
			target string
			source sql.NullString
		)
		if err := rows.Scan(&e.Seq, &action, &target, &source, &e.Value, &e.Prev); err != nil {
			return nil, fmt.Errorf("replay events: %w", err)
		}
		e.Action = op.Action(action)
		if err := json.Unmarshal([]byte(target), &e.Target); err != nil {
			return nil, fmt.Errorf("replay events: decode target at seq %d: %w", e.Seq, err)
		}
		if source.Valid {
			var loc op.Locator
			if err := json.Unmarshal([]byte(source.String), &loc); err != nil {
				return nil, fmt.Errorf("replay events: decode source at seq %d: %w", e.Seq, err)
			}
			e.Source = &loc
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("replay events: %w", err)
	}
	return events, nil
}

// ListComposites reads a trace's consolidated operations ordered by span
// start.
func (s *Store) ListComposites(ctx context.Context, traceID string) ([]StoredComposite, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, seq_from, seq_to, operands
		FROM operations
		WHERE trace_id = ?
		ORDER BY seq_from, seq_to
	`, traceID)
	if err != nil {
		return nil, fmt.Errorf("list composites: %w", err)
	}
	defer rows.Close()

	var comps []StoredComposite
	for rows.Next() {
		var (
			c        StoredComposite
			kind     string
			operands string
		)
		if err := rows.Scan(&c.ID, &kind, &c.SeqFrom, &c.SeqTo, &operands); err != nil {
			return nil, fmt.Errorf("list composites: %w", err)
		}
		c.Kind = op.Kind(kind)
		if err := json.Unmarshal([]byte(operands), &c.Operands); err != nil {
			return nil, fmt.Errorf("list composites: decode operands for %s: %w", c.ID, err)
		}
		comps = append(comps, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list composites: %w", err)
	}
	return comps, nil
}
