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

// NewPrompt carries the validated fields for prompt creation.
type NewPrompt struct {
	Name        string
	Content     string
	Description string
	WrapperID   int64
	Tags        []string
}

var promptColumns = []string{
	"id", "name", "content", "description", "wrapper_id", "tags_json", "created_at",
}

func (s *Store) CreatePrompt(ctx context.Context, np NewPrompt) (*Prompt, error) {
	p := Prompt{
		Name:        np.Name,
		Content:     np.Content,
		Description: np.Description,
		WrapperID:   np.WrapperID,
		Tags:        np.Tags,
		CreatedAt:   time.Now().UTC(),
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode prompt tags: %w", err)
	}

	q := s.sql.Insert("prompts").
		Columns("name", "content", "description", "wrapper_id", "tags_json", "created_at").
		Values(p.Name, p.Content, p.Description, p.WrapperID, string(tags), p.CreatedAt).
		Suffix("RETURNING id")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build prompt insert query: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&p.ID); err != nil {
		return nil, fmt.Errorf("insert prompt: %w", err)
	}
	return &p, nil
}

func (s *Store) GetPrompt(ctx context.Context, id int64) (*Prompt, error) {
	q := s.sql.Select(promptColumns...).From("prompts").Where(sq.Eq{"id": id})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build prompt query: %w", err)
	}

	p, err := scanPrompt(s.db.QueryRowContext(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get prompt: %w", err)
	}
	return p, nil
}

func (s *Store) ListPromptsByWrapper(ctx context.Context, wrapperID int64) ([]*Prompt, error) {
	q := s.sql.Select(promptColumns...).From("prompts").
		Where(sq.Eq{"wrapper_id": wrapperID}).
		OrderBy("id ASC")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list prompts query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	out := make([]*Prompt, 0)
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prompt row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prompt rows: %w", err)
	}
	return out, nil
}

func (s *Store) UpdatePrompt(ctx context.Context, id int64, patch PromptPatch) (*Prompt, error) {
	q := s.sql.Update("prompts").Where(sq.Eq{"id": id})
	changed := false

	if patch.Name != nil {
		q = q.Set("name", *patch.Name)
		changed = true
	}
	if patch.Content != nil {
		q = q.Set("content", *patch.Content)
		changed = true
	}
	if patch.Description != nil {
		q = q.Set("description", *patch.Description)
		changed = true
	}
	if patch.Tags != nil {
		tags, err := json.Marshal(*patch.Tags)
		if err != nil {
			return nil, fmt.Errorf("encode prompt tags: %w", err)
		}
		q = q.Set("tags_json", string(tags))
		changed = true
	}

	if changed {
		sqlStr, args, err := q.ToSql()
		if err != nil {
			return nil, fmt.Errorf("build prompt update query: %w", err)
		}
		res, err := s.db.ExecContext(ctx, sqlStr, args...)
		if err != nil {
			return nil, fmt.Errorf("update prompt: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return nil, ErrNotFound
		}
	}

	return s.GetPrompt(ctx, id)
}

func (s *Store) DeletePrompt(ctx context.Context, id int64) error {
	q := s.sql.Delete("prompts").Where(sq.Eq{"id": id})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete prompt query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPrompt(r rowScanner) (*Prompt, error) {
	var p Prompt
	var tags []byte
	if err := r.Scan(
		&p.ID, &p.Name, &p.Content, &p.Description, &p.WrapperID, &tags, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tags, &p.Tags); err != nil {
		return nil, fmt.Errorf("decode prompt tags: %w", err)
	}
	return &p, nil
}
