package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// NewConversation carries the validated fields for conversation creation.
type NewConversation struct {
	WrapperID int64
	Messages  []Message
}

var conversationColumns = []string{
	"id", "wrapper_id", "messages_json", "created_at",
}

func (s *Store) CreateConversation(ctx context.Context, nc NewConversation) (*Conversation, error) {
	c := Conversation{
		WrapperID: nc.WrapperID,
		Messages:  nc.Messages,
		CreatedAt: time.Now().UTC(),
	}
	if c.Messages == nil {
		c.Messages = []Message{}
	}
	msgs, err := json.Marshal(c.Messages)
	if err != nil {
		return nil, fmt.Errorf("encode conversation messages: %w", err)
	}

	q := s.sql.Insert("conversations").
		Columns("wrapper_id", "messages_json", "created_at").
		Values(c.WrapperID, string(msgs), c.CreatedAt).
		Suffix("RETURNING id")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build conversation insert query: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&c.ID); err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}
	return &c, nil
}

func (s *Store) GetConversation(ctx context.Context, id int64) (*Conversation, error) {
	q := s.sql.Select(conversationColumns...).From("conversations").Where(sq.Eq{"id": id})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build conversation query: %w", err)
	}

	c, err := scanConversation(s.db.QueryRowContext(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return c, nil
}

func (s *Store) ListConversationsByWrapper(ctx context.Context, wrapperID int64) ([]*Conversation, error) {
	q := s.sql.Select(conversationColumns...).From("conversations").
		Where(sq.Eq{"wrapper_id": wrapperID}).
		OrderBy("id ASC")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list conversations query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	out := make([]*Conversation, 0)
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversation rows: %w", err)
	}
	return out, nil
}

// UpdateConversation merges patch fields into the stored record. The chat
// service uses it to persist an extended transcript; conversations are never
// deleted through the public contract.
func (s *Store) UpdateConversation(ctx context.Context, id int64, patch ConversationPatch) (*Conversation, error) {
	if patch.Messages != nil {
		msgs, err := json.Marshal(*patch.Messages)
		if err != nil {
			return nil, fmt.Errorf("encode conversation messages: %w", err)
		}
		q := s.sql.Update("conversations").
			Set("messages_json", string(msgs)).
			Where(sq.Eq{"id": id})
		sqlStr, args, err := q.ToSql()
		if err != nil {
			return nil, fmt.Errorf("build conversation update query: %w", err)
		}
		res, err := s.db.ExecContext(ctx, sqlStr, args...)
		if err != nil {
			return nil, fmt.Errorf("update conversation: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return nil, ErrNotFound
		}
	}

	return s.GetConversation(ctx, id)
}

func scanConversation(r rowScanner) (*Conversation, error) {
	var c Conversation
	var msgs []byte
	if err := r.Scan(&c.ID, &c.WrapperID, &msgs, &c.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(msgs, &c.Messages); err != nil {
		return nil, fmt.Errorf("decode conversation messages: %w", err)
	}
	return &c, nil
}
