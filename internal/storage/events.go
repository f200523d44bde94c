package storage

import "github.com/azeraturan/spiderfoot/internal/model"

// QueuedEvent is one undelivered row from the postgres queue.
type QueuedEvent struct {
	ID    int64
	Event model.Event
}

func (p *Postgres) AddEvent(ev *model.Event) error {
	_, err := p.db.Exec(`
		INSERT INTO events (event_id, type, data, module, parent_id, actual_source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, ev.ID, ev.Type, ev.Data, ev.Module, ev.ParentID, ev.ActualSource, ev.CreatedAt)
	return err
}

func (p *Postgres) ListUndeliveredEvents(limit int) ([]QueuedEvent, error) {
	rows, err := p.db.Query(`
		SELECT id, event_id, type, data, module, parent_id, actual_source, created_at
		FROM events
		WHERE NOT delivered
		ORDER BY id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []QueuedEvent
	for rows.Next() {
		var q QueuedEvent
		if err := rows.Scan(
			&q.ID, &q.Event.ID, &q.Event.Type, &q.Event.Data, &q.Event.Module,
			&q.Event.ParentID, &q.Event.ActualSource, &q.Event.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (p *Postgres) MarkEventDelivered(id int64) error {
	_, err := p.db.Exec(`UPDATE events SET delivered = TRUE WHERE id = $1`, id)
	return err
}
