package db

import (
	"context"
	"fmt"

	"github.com/chris/mentor/internal/model"
)

func (d *DB) insertChatTurn(ctx context.Context, c model.ChatTurn) (int64, error) {
	res, err := d.conn.ExecContext(ctx, `
		INSERT INTO chat_turns (user_id, date, ts, role, message, intent, sentiment,
			source, fallback_reason, reply_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.UserID, dateStr(c.Timestamp), tsStr(c.Timestamp), c.Role, c.Message, c.Intent, c.Sentiment,
		c.Source, c.FallbackReason, c.ReplyID,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting chat turn: %w", err)
	}
	return res.LastInsertId()
}

func (d *DB) listChatTurns(ctx context.Context, userID, lo, hi string) ([]model.ChatTurn, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, user_id, ts, role, message, intent, sentiment, source, fallback_reason, reply_id
		FROM chat_turns
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY ts ASC, id ASC`,
		userID, lo, hi,
	)
	if err != nil {
		return nil, fmt.Errorf("listing chat turns: %w", err)
	}
	defer rows.Close()

	var out []model.ChatTurn
	for rows.Next() {
		var c model.ChatTurn
		var ts string
		if err := rows.Scan(&c.ID, &c.UserID, &ts, &c.Role, &c.Message, &c.Intent, &c.Sentiment,
			&c.Source, &c.FallbackReason, &c.ReplyID); err != nil {
			return nil, fmt.Errorf("scanning chat turn: %w", err)
		}
		t, err := parseTS(ts)
		if err != nil {
			return nil, err
		}
		c.Timestamp = t
		out = append(out, c)
	}
	return out, rows.Err()
}
