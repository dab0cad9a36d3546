package persistence

import (
	"context"
	"fmt"
	"time"
)

// Append inserts a new immutable message record and returns its id.
// A zero ts means "now". Timestamps are normalized to UTC before storage so
// the stored text stays comparable regardless of the caller's zone.
func (s *Store) Append(ctx context.Context, chatID int64, author, text string, ts time.Time) (int64, error) {
	if ts.IsZero() {
		ts = time.Now()
	}
	var id int64
	err := retryOnBusy(ctx, 5, func() error {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO messages (chat_id, timestamp, author, text)
			VALUES (?, ?, ?, ?);
		`, chatID, ts.UTC().Format(timeLayout), author, text)
		if err != nil {
			return storageErr("insert message", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return storageErr("message insert id", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// WindowMessages returns all records for chatID with timestamp inside the
// trailing window, ascending by timestamp. A non-positive window or a chat
// with no records yields an empty slice, never an error.
func (s *Store) WindowMessages(ctx context.Context, chatID int64, windowHours int) ([]Message, error) {
	if windowHours <= 0 {
		return nil, nil
	}
	cutoff := windowCutoff(windowHours)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chat_id, timestamp, author, text
		FROM messages
		WHERE chat_id = ? AND timestamp > ?
		ORDER BY timestamp ASC;
	`, chatID, cutoff)
	if err != nil {
		return nil, storageErr("query window messages", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var stamp string
		if err := rows.Scan(&m.ID, &m.ChatID, &stamp, &m.Author, &m.Text); err != nil {
			return nil, storageErr("scan message", err)
		}
		t, err := time.Parse(timeLayout, stamp)
		if err != nil {
			// A malformed stamp contributes nothing rather than failing
			// the whole window.
			continue
		}
		m.Timestamp = t
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("message rows", err)
	}
	return out, nil
}

// Count returns the number of records matching the WindowMessages predicate
// without materializing them.
func (s *Store) Count(ctx context.Context, chatID int64, windowHours int) (int64, error) {
	if windowHours <= 0 {
		return 0, nil
	}
	var n int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages WHERE chat_id = ? AND timestamp > ?;
	`, chatID, windowCutoff(windowHours)).Scan(&n)
	if err != nil {
		return 0, storageErr("count messages", err)
	}
	return n, nil
}

// DistinctAuthors returns the number of distinct authors for chatID inside
// the window.
func (s *Store) DistinctAuthors(ctx context.Context, chatID int64, windowHours int) (int64, error) {
	if windowHours <= 0 {
		return 0, nil
	}
	var n int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT author) FROM messages WHERE chat_id = ? AND timestamp > ?;
	`, chatID, windowCutoff(windowHours)).Scan(&n)
	if err != nil {
		return 0, storageErr("count distinct authors", err)
	}
	return n, nil
}

// EvictOlderThan deletes, across all chats, every record older than the
// trailing window and returns the deleted count. Idempotent: a second call
// with no intervening appends deletes nothing.
func (s *Store) EvictOlderThan(ctx context.Context, windowHours int) (int64, error) {
	if windowHours <= 0 {
		return 0, nil
	}
	var deleted int64
	err := retryOnBusy(ctx, 5, func() error {
		res, err := s.db.ExecContext(ctx, `
			DELETE FROM messages WHERE timestamp < ?;
		`, windowCutoff(windowHours))
		if err != nil {
			return storageErr("evict messages", err)
		}
		deleted, err = res.RowsAffected()
		if err != nil {
			return storageErr("evict rows affected", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// ClearChat deletes all records for one chat regardless of age and returns
// the deleted count.
func (s *Store) ClearChat(ctx context.Context, chatID int64) (int64, error) {
	var deleted int64
	err := retryOnBusy(ctx, 5, func() error {
		res, err := s.db.ExecContext(ctx, `
			DELETE FROM messages WHERE chat_id = ?;
		`, chatID)
		if err != nil {
			return storageErr("clear chat", err)
		}
		deleted, err = res.RowsAffected()
		if err != nil {
			return storageErr("clear rows affected", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// Bounds returns the oldest and newest timestamps for chatID inside the
// window. ok is false when the window is empty.
func (s *Store) Bounds(ctx context.Context, chatID int64, windowHours int) (oldest, newest time.Time, ok bool, err error) {
	if windowHours <= 0 {
		return time.Time{}, time.Time{}, false, nil
	}
	var minStamp, maxStamp *string
	err = s.db.QueryRowContext(ctx, `
		SELECT MIN(timestamp), MAX(timestamp)
		FROM messages
		WHERE chat_id = ? AND timestamp > ?;
	`, chatID, windowCutoff(windowHours)).Scan(&minStamp, &maxStamp)
	if err != nil {
		return time.Time{}, time.Time{}, false, storageErr("message bounds", err)
	}
	if minStamp == nil || maxStamp == nil {
		return time.Time{}, time.Time{}, false, nil
	}
	oldest, err = time.Parse(timeLayout, *minStamp)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("parse oldest timestamp: %w", err)
	}
	newest, err = time.Parse(timeLayout, *maxStamp)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("parse newest timestamp: %w", err)
	}
	return oldest, newest, true, nil
}

func windowCutoff(windowHours int) string {
	return time.Now().UTC().Add(-time.Duration(windowHours) * time.Hour).Format(timeLayout)
}
