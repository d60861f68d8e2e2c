package repository

import (
	"context"
	"fmt"
)

// HasWebhookEvent сообщает, было ли событие с таким идентификатором
// уже обработано.
func (s *Storage) HasWebhookEvent(ctx context.Context, eventID string) (bool, error) {
	const op = "storage.HasWebhookEvent"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM webhook_events WHERE event_id = $1)`
	if err := s.DB.QueryRowContext(ctx, query, eventID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// InsertWebhookEvent фиксирует событие платёжного провайдера по его
// идентификатору. Возвращает false, если событие уже было обработано —
// повторная доставка при этом не должна применяться второй раз.
func (s *Storage) InsertWebhookEvent(ctx context.Context, eventID, eventType string) (bool, error) {
	const op = "storage.InsertWebhookEvent"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO webhook_events (event_id, type)
			  VALUES ($1, $2)
			  ON CONFLICT (event_id) DO NOTHING`
	result, err := s.DB.ExecContext(ctx, query, eventID, eventType)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected > 0, nil
}
