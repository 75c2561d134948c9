package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"formulahub-backend/domain/catalog"
	pkgerrors "formulahub-backend/pkg/errors"
)

// RateLimitWindow is the minimum spacing between accepted events from
// the same session for the same item.
const RateLimitWindow = 10 * time.Second

// itemTable maps an event kind to the table owning the item and its
// counter columns. Counters are authoritative for all-time popularity;
// the event log is authoritative only for recency.
type itemTable struct {
	name       string
	resource   string
	counterCol string
	lastAtCol  string
}

func tableFor(kind catalog.EventKind) (itemTable, error) {
	switch kind {
	case catalog.EventKindCopy:
		return itemTable{name: "formulas", resource: "formula", counterCol: "total_copies", lastAtCol: "last_copied_at"}, nil
	case catalog.EventKindClick:
		return itemTable{name: "cards", resource: "card", counterCol: "total_clicks", lastAtCol: "last_clicked_at"}, nil
	default:
		return itemTable{}, pkgerrors.NewValidationError(fmt.Sprintf("unknown event kind %q", kind))
	}
}

// EventStore is the append-only log of interaction events. It owns the
// only write path for per-item counters.
type EventStore struct {
	db *DB
}

// NewEventStore creates an event store on the shared database handle
func NewEventStore(db *DB) *EventStore {
	return &EventStore{db: db}
}

// RecordEvent appends an event and bumps the item counter atomically.
// The rate-limit check runs inside the same transaction as the insert;
// with the immediate write lock taken at BEGIN, two concurrent calls for
// one (item, session) pair cannot both pass the check.
func (s *EventStore) RecordEvent(ctx context.Context, kind catalog.EventKind, itemID, sessionID string, now time.Time) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, pkgerrors.NewDatabaseError("record event", err)
	}
	defer tx.Rollback()

	var exists int
	query := fmt.Sprintf("SELECT COUNT(1) FROM %s WHERE id = ?", table.name)
	if err := tx.QueryRowContext(ctx, query, itemID).Scan(&exists); err != nil {
		return false, pkgerrors.NewDatabaseError("record event", err)
	}
	if exists == 0 {
		return false, pkgerrors.NewNotFoundError(table.resource)
	}

	cutoff := now.Add(-RateLimitWindow)
	var recent int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM events
		 WHERE item_kind = ? AND item_id = ? AND session_id = ? AND created_at > ?`,
		string(kind), itemID, sessionID, cutoff,
	).Scan(&recent)
	if err != nil {
		return false, pkgerrors.NewDatabaseError("record event", err)
	}
	if recent > 0 {
		// Duplicate inside the window: drop the event, keep counters
		// untouched. Not an error.
		return false, nil
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO events (item_kind, item_id, session_id, created_at) VALUES (?, ?, ?, ?)",
		string(kind), itemID, sessionID, now,
	)
	if err != nil {
		return false, pkgerrors.NewDatabaseError("record event", err)
	}

	update := fmt.Sprintf(
		"UPDATE %s SET %s = %s + 1, %s = ? WHERE id = ?",
		table.name, table.counterCol, table.counterCol, table.lastAtCol,
	)
	if _, err := tx.ExecContext(ctx, update, now, itemID); err != nil {
		return false, pkgerrors.NewDatabaseError("record event", err)
	}

	if err := tx.Commit(); err != nil {
		return false, pkgerrors.NewDatabaseError("record event", err)
	}
	return true, nil
}

// EventsSince returns event timestamps per item recorded at or after
// since, ordered oldest first within each item.
func (s *EventStore) EventsSince(ctx context.Context, kind catalog.EventKind, itemIDs []string, since time.Time) (map[string][]time.Time, error) {
	if _, err := tableFor(kind); err != nil {
		return nil, err
	}
	if len(itemIDs) == 0 {
		return map[string][]time.Time{}, nil
	}

	placeholders := strings.Repeat("?,", len(itemIDs)-1) + "?"
	args := make([]interface{}, 0, len(itemIDs)+2)
	args = append(args, string(kind))
	for _, id := range itemIDs {
		args = append(args, id)
	}
	args = append(args, since)

	query := fmt.Sprintf(
		`SELECT item_id, created_at FROM events
		 WHERE item_kind = ? AND item_id IN (%s) AND created_at >= ?
		 ORDER BY item_id, created_at`,
		placeholders,
	)

	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query events", err)
	}
	defer rows.Close()

	out := make(map[string][]time.Time)
	for rows.Next() {
		var itemID string
		var at time.Time
		if err := rows.Scan(&itemID, &at); err != nil {
			return nil, pkgerrors.NewDatabaseError("scan event", err)
		}
		out[itemID] = append(out[itemID], at)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("query events", err)
	}
	return out, nil
}

// deleteItemEvents removes an item's events inside the caller's
// transaction; used by the repositories when deleting content.
func deleteItemEvents(ctx context.Context, tx *sql.Tx, kind catalog.EventKind, itemID string) error {
	_, err := tx.ExecContext(ctx,
		"DELETE FROM events WHERE item_kind = ? AND item_id = ?",
		string(kind), itemID,
	)
	return err
}
