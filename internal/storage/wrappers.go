package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// NewWrapper carries the validated fields for wrapper creation. Defaults are
// applied by the validation layer before it reaches the store.
type NewWrapper struct {
	Name                     string
	Description              string
	BaseModel                string
	SystemPrompt             string
	Temperature              int
	MaxTokens                int
	TopP                     int
	EnableMemory             bool
	KnowledgeBaseIntegration bool
	WebSearchAccess          bool
	UserID                   int64
}

var wrapperColumns = []string{
	"id", "name", "description", "base_model", "system_prompt",
	"temperature", "max_tokens", "top_p",
	"enable_memory", "knowledge_base_integration", "web_search_access",
	"user_id", "created_at",
}

func (s *Store) CreateWrapper(ctx context.Context, nw NewWrapper) (*Wrapper, error) {
	w := Wrapper{
		Name:                     nw.Name,
		Description:              nw.Description,
		BaseModel:                nw.BaseModel,
		SystemPrompt:             nw.SystemPrompt,
		Temperature:              nw.Temperature,
		MaxTokens:                nw.MaxTokens,
		TopP:                     nw.TopP,
		EnableMemory:             nw.EnableMemory,
		KnowledgeBaseIntegration: nw.KnowledgeBaseIntegration,
		WebSearchAccess:          nw.WebSearchAccess,
		UserID:                   nw.UserID,
		CreatedAt:                time.Now().UTC(),
	}

	q := s.sql.Insert("wrappers").
		Columns("name", "description", "base_model", "system_prompt",
			"temperature", "max_tokens", "top_p",
			"enable_memory", "knowledge_base_integration", "web_search_access",
			"user_id", "created_at").
		Values(w.Name, w.Description, w.BaseModel, w.SystemPrompt,
			w.Temperature, w.MaxTokens, w.TopP,
			w.EnableMemory, w.KnowledgeBaseIntegration, w.WebSearchAccess,
			w.UserID, w.CreatedAt).
		Suffix("RETURNING id")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build wrapper insert query: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&w.ID); err != nil {
		return nil, fmt.Errorf("insert wrapper: %w", err)
	}
	return &w, nil
}

func (s *Store) GetWrapper(ctx context.Context, id int64) (*Wrapper, error) {
	q := s.sql.Select(wrapperColumns...).From("wrappers").Where(sq.Eq{"id": id})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build wrapper query: %w", err)
	}

	w, err := scanWrapper(s.db.QueryRowContext(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get wrapper: %w", err)
	}
	return w, nil
}

func (s *Store) ListWrappers(ctx context.Context) ([]*Wrapper, error) {
	return s.listWrappers(ctx, nil)
}

func (s *Store) ListWrappersByUser(ctx context.Context, userID int64) ([]*Wrapper, error) {
	return s.listWrappers(ctx, sq.Eq{"user_id": userID})
}

func (s *Store) listWrappers(ctx context.Context, where sq.Sqlizer) ([]*Wrapper, error) {
	q := s.sql.Select(wrapperColumns...).From("wrappers").OrderBy("id ASC")
	if where != nil {
		q = q.Where(where)
	}
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list wrappers query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list wrappers: %w", err)
	}
	defer rows.Close()

	out := make([]*Wrapper, 0)
	for rows.Next() {
		w, err := scanWrapper(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wrapper row: %w", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wrapper rows: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateWrapper(ctx context.Context, id int64, patch WrapperPatch) (*Wrapper, error) {
	q := s.sql.Update("wrappers").Where(sq.Eq{"id": id})
	changed := false

	if patch.Name != nil {
		q = q.Set("name", *patch.Name)
		changed = true
	}
	if patch.Description != nil {
		q = q.Set("description", *patch.Description)
		changed = true
	}
	if patch.BaseModel != nil {
		q = q.Set("base_model", *patch.BaseModel)
		changed = true
	}
	if patch.SystemPrompt != nil {
		q = q.Set("system_prompt", *patch.SystemPrompt)
		changed = true
	}
	if patch.Temperature != nil {
		q = q.Set("temperature", *patch.Temperature)
		changed = true
	}
	if patch.MaxTokens != nil {
		q = q.Set("max_tokens", *patch.MaxTokens)
		changed = true
	}
	if patch.TopP != nil {
		q = q.Set("top_p", *patch.TopP)
		changed = true
	}
	if patch.EnableMemory != nil {
		q = q.Set("enable_memory", *patch.EnableMemory)
		changed = true
	}
	if patch.KnowledgeBaseIntegration != nil {
		q = q.Set("knowledge_base_integration", *patch.KnowledgeBaseIntegration)
		changed = true
	}
	if patch.WebSearchAccess != nil {
		q = q.Set("web_search_access", *patch.WebSearchAccess)
		changed = true
	}

	if changed {
		sqlStr, args, err := q.ToSql()
		if err != nil {
			return nil, fmt.Errorf("build wrapper update query: %w", err)
		}
		res, err := s.db.ExecContext(ctx, sqlStr, args...)
		if err != nil {
			return nil, fmt.Errorf("update wrapper: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return nil, ErrNotFound
		}
	}

	return s.GetWrapper(ctx, id)
}

func (s *Store) DeleteWrapper(ctx context.Context, id int64) error {
	q := s.sql.Delete("wrappers").Where(sq.Eq{"id": id})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete wrapper query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("delete wrapper: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWrapper(r rowScanner) (*Wrapper, error) {
	var w Wrapper
	if err := r.Scan(
		&w.ID, &w.Name, &w.Description, &w.BaseModel, &w.SystemPrompt,
		&w.Temperature, &w.MaxTokens, &w.TopP,
		&w.EnableMemory, &w.KnowledgeBaseIntegration, &w.WebSearchAccess,
		&w.UserID, &w.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &w, nil
}
