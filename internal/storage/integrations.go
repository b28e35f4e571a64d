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

// NewIntegration carries the validated fields for integration creation.
type NewIntegration struct {
	Name      string
	Type      string
	Config    map[string]any
	WrapperID int64
}

var integrationColumns = []string{
	"id", "name", "type", "config_json", "wrapper_id", "created_at",
}

func (s *Store) CreateIntegration(ctx context.Context, ni NewIntegration) (*Integration, error) {
	in := Integration{
		Name:      ni.Name,
		Type:      ni.Type,
		Config:    ni.Config,
		WrapperID: ni.WrapperID,
		CreatedAt: time.Now().UTC(),
	}
	if in.Config == nil {
		in.Config = map[string]any{}
	}
	cfg, err := json.Marshal(in.Config)
	if err != nil {
		return nil, fmt.Errorf("encode integration config: %w", err)
	}

	q := s.sql.Insert("integrations").
		Columns("name", "type", "config_json", "wrapper_id", "created_at").
		Values(in.Name, in.Type, string(cfg), in.WrapperID, in.CreatedAt).
		Suffix("RETURNING id")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build integration insert query: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&in.ID); err != nil {
		return nil, fmt.Errorf("insert integration: %w", err)
	}
	return &in, nil
}

func (s *Store) GetIntegration(ctx context.Context, id int64) (*Integration, error) {
	q := s.sql.Select(integrationColumns...).From("integrations").Where(sq.Eq{"id": id})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build integration query: %w", err)
	}

	in, err := scanIntegration(s.db.QueryRowContext(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get integration: %w", err)
	}
	return in, nil
}

func (s *Store) ListIntegrationsByWrapper(ctx context.Context, wrapperID int64) ([]*Integration, error) {
	q := s.sql.Select(integrationColumns...).From("integrations").
		Where(sq.Eq{"wrapper_id": wrapperID}).
		OrderBy("id ASC")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list integrations query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}
	defer rows.Close()

	out := make([]*Integration, 0)
	for rows.Next() {
		in, err := scanIntegration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan integration row: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate integration rows: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateIntegration(ctx context.Context, id int64, patch IntegrationPatch) (*Integration, error) {
	q := s.sql.Update("integrations").Where(sq.Eq{"id": id})
	changed := false

	if patch.Name != nil {
		q = q.Set("name", *patch.Name)
		changed = true
	}
	if patch.Type != nil {
		q = q.Set("type", *patch.Type)
		changed = true
	}
	if patch.Config != nil {
		cfg, err := json.Marshal(*patch.Config)
		if err != nil {
			return nil, fmt.Errorf("encode integration config: %w", err)
		}
		q = q.Set("config_json", string(cfg))
		changed = true
	}

	if changed {
		sqlStr, args, err := q.ToSql()
		if err != nil {
			return nil, fmt.Errorf("build integration update query: %w", err)
		}
		res, err := s.db.ExecContext(ctx, sqlStr, args...)
		if err != nil {
			return nil, fmt.Errorf("update integration: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return nil, ErrNotFound
		}
	}

	return s.GetIntegration(ctx, id)
}

func (s *Store) DeleteIntegration(ctx context.Context, id int64) error {
	q := s.sql.Delete("integrations").Where(sq.Eq{"id": id})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete integration query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("delete integration: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanIntegration(r rowScanner) (*Integration, error) {
	var in Integration
	var cfg []byte
	if err := r.Scan(
		&in.ID, &in.Name, &in.Type, &cfg, &in.WrapperID, &in.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cfg, &in.Config); err != nil {
		return nil, fmt.Errorf("decode integration config: %w", err)
	}
	return &in, nil
}
