// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/microgrants/models"
)

// ProfilesByIDs fetches profiles for a set of user IDs in one query.
// IDs without a profile are simply absent from the result.
func (s *Store) ProfilesByIDs(ctx context.Context, ids []string) (map[string]models.Profile, error) {
	out := make(map[string]models.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT user_id, display_name, avatar_url FROM profiles WHERE user_id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile query: %w", err)
	}

	var profiles []models.Profile
	if err := s.db.SelectContext(ctx, &profiles, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to fetch profiles: %w", err)
	}
	for _, p := range profiles {
		out[p.UserID] = p
	}
	return out, nil
}

// LabsByIDs fetches labs for a set of lab IDs in one query.
func (s *Store) LabsByIDs(ctx context.Context, ids []string) (map[string]models.Lab, error) {
	out := make(map[string]models.Lab, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT id, name, avatar_url FROM labs WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build lab query: %w", err)
	}

	var labs []models.Lab
	if err := s.db.SelectContext(ctx, &labs, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to fetch labs: %w", err)
	}
	for _, l := range labs {
		out[l.ID] = l
	}
	return out, nil
}

// UpsertProfile is used by seeding and tests; the review flow never writes profiles.
func (s *Store) UpsertProfile(ctx context.Context, p models.Profile) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO profiles (user_id, display_name, avatar_url) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET display_name = excluded.display_name, avatar_url = excluded.avatar_url
	`), p.UserID, p.DisplayName, p.AvatarURL)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func (s *Store) UpsertLab(ctx context.Context, l models.Lab) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO labs (id, name, avatar_url) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, avatar_url = excluded.avatar_url
	`), l.ID, l.Name, l.AvatarURL)
	if err != nil {
		return fmt.Errorf("failed to upsert lab: %w", err)
	}
	return nil
}
