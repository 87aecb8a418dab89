package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mrp/ent"
)

const plantColumns = `id, name, coalesce(location, '') as location, coalesce(capacity, 0) as capacity`

func (s *Session) Plants(ctx context.Context) ([]ent.Plant, error) {
	ps := []ent.Plant{}

	err := s.selectAll(ctx, &ps, `select `+plantColumns+` from plants order by id asc`)
	if err != nil {
		return nil, fmt.Errorf("select plants: %w", err)
	}

	return ps, nil
}

func (s *Session) Plant(ctx context.Context, id int64) (ent.Plant, error) {
	var p ent.Plant

	err := s.get(ctx, &p, `select `+plantColumns+` from plants where id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, fmt.Errorf("select plant %d: %w", id, err)
	}

	return p, nil
}

func (s *Session) PlantByName(ctx context.Context, name string) (ent.Plant, error) {
	var p ent.Plant

	err := s.get(ctx, &p, `select `+plantColumns+` from plants where name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, fmt.Errorf("select plant %q: %w", name, err)
	}

	return p, nil
}

// CreatePlant inserts p and returns the stored row with its generated id.
func (s *Session) CreatePlant(ctx context.Context, p ent.Plant) (ent.Plant, error) {
	var id int64

	err := s.get(ctx, &id, `
		insert into plants(name, location, capacity)
		values (?, ?, ?)
		returning id
	`, p.Name, p.Location, p.Capacity)
	if err != nil {
		return ent.Plant{}, fmt.Errorf("insert plant: %w", err)
	}

	return s.Plant(ctx, id)
}

// UpdatePlant overwrites every column of the plant with p.ID.
func (s *Session) UpdatePlant(ctx context.Context, p ent.Plant) (ent.Plant, error) {
	err := s.execOne(ctx, `
		update plants set name = ?, location = ?, capacity = ?
		where id = ?
	`, p.Name, p.Location, p.Capacity, p.ID)
	if errors.Is(err, ErrNotFound) {
		return ent.Plant{}, err
	}
	if err != nil {
		return ent.Plant{}, fmt.Errorf("update plant %d: %w", p.ID, err)
	}

	return s.Plant(ctx, p.ID)
}

func (s *Session) DeletePlant(ctx context.Context, id int64) error {
	err := s.execOne(ctx, `delete from plants where id = ?`, id)
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("delete plant %d: %w", id, err)
	}

	return nil
}
