package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"batepapo/internal/message"
	"batepapo/internal/participant"
)

type pgParticipantRepo struct {
	db *sql.DB
}

func (r *pgParticipantRepo) Create(ctx context.Context, p participant.Participant) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO participants (name, last_seen)
		VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`, p.Name, p.LastSeen)
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	if affected == 0 {
		return participant.ErrConflict
	}
	return nil
}

func (r *pgParticipantRepo) Get(ctx context.Context, name string) (participant.Participant, error) {
	row := r.db.QueryRowContext(ctx, `SELECT name, last_seen FROM participants WHERE name = $1`, name)
	var p participant.Participant
	if err := row.Scan(&p.Name, &p.LastSeen); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return participant.Participant{}, participant.ErrNotFound
		}
		return participant.Participant{}, fmt.Errorf("select participant: %w", err)
	}
	return p, nil
}

func (r *pgParticipantRepo) List(ctx context.Context) ([]participant.Participant, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, last_seen FROM participants`)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []participant.Participant
	for rows.Next() {
		var p participant.Participant
		if err := rows.Scan(&p.Name, &p.LastSeen); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return out, nil
}

func (r *pgParticipantRepo) UpdateLastSeen(ctx context.Context, name string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE participants SET last_seen = $2 WHERE name = $1`, name, at)
	if err != nil {
		return fmt.Errorf("update last_seen: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update last_seen: %w", err)
	}
	if affected == 0 {
		return participant.ErrNotFound
	}
	return nil
}

func (r *pgParticipantRepo) Remove(ctx context.Context, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM participants WHERE name = $1`, name)
	if err != nil {
		return false, fmt.Errorf("delete participant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete participant: %w", err)
	}
	return affected > 0, nil
}

type pgMessageRepo struct {
	db *sql.DB
}

func (r *pgMessageRepo) Append(ctx context.Context, m message.Message) (message.Message, error) {
	// The GREATEST clamp keeps sent_at non-decreasing in seq order even if
	// the server clock steps backwards between appends.
	row := r.db.QueryRowContext(ctx, `INSERT INTO messages (id, sender, recipient, body, kind, sent_at)
		VALUES ($1, $2, $3, $4, $5,
			GREATEST($6::timestamptz, COALESCE((SELECT MAX(sent_at) FROM messages), $6::timestamptz)))
		RETURNING seq, sent_at`,
		m.ID, m.From, m.To, m.Text, string(m.Kind), m.SentAt)
	if err := row.Scan(&m.Seq, &m.SentAt); err != nil {
		return message.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return m, nil
}

func (r *pgMessageRepo) Get(ctx context.Context, id string) (message.Message, error) {
	row := r.db.QueryRowContext(ctx, `SELECT seq, id, sender, recipient, body, kind, sent_at
		FROM messages WHERE id = $1`, id)
	m, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return message.Message{}, message.ErrNotFound
		}
		return message.Message{}, fmt.Errorf("select message: %w", err)
	}
	return m, nil
}

func (r *pgMessageRepo) Update(ctx context.Context, id string, patch message.Patch) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET recipient = $2, body = $3, kind = $4
		WHERE id = $1`, id, patch.To, patch.Text, string(patch.Kind))
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	if affected == 0 {
		return message.ErrNotFound
	}
	return nil
}

func (r *pgMessageRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if affected == 0 {
		return message.ErrNotFound
	}
	return nil
}

func (r *pgMessageRepo) List(ctx context.Context) ([]message.Message, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT seq, id, sender, recipient, body, kind, sent_at
		FROM messages ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []message.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (message.Message, error) {
	var m message.Message
	var kind string
	if err := row.Scan(&m.Seq, &m.ID, &m.From, &m.To, &m.Text, &kind, &m.SentAt); err != nil {
		return message.Message{}, err
	}
	m.Kind = message.Kind(kind)
	return m, nil
}
