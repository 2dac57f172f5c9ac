package persist

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"github.com/l1jgo/gridworld/internal/errors"
)

// Load reads a character and its items.
func (s *PgStore) Load(ctx context.Context, userID string) (*Record, error) {
	rec := &Record{UserID: userID}
	err := s.db.Pool.QueryRow(ctx,
		`SELECT name, map_id, x, y,
		        health, health_max, money, bank, exp, enh_points, accuracy,
		        faction_id
		 FROM characters WHERE user_id = $1`, userID,
	).Scan(
		&rec.Name, &rec.Location.Map, &rec.Location.X, &rec.Location.Y,
		&rec.Stats.Health, &rec.Stats.HealthMax, &rec.Stats.Money, &rec.Stats.Bank,
		&rec.Stats.Exp, &rec.Stats.EnhPoints, &rec.Stats.Accuracy,
		&rec.FactionID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFoundf("no character for user %s", userID)
		}
		return nil, errors.Persistencef(err, "load character %s", userID)
	}

	items, err := s.loadItems(ctx, userID)
	if err != nil {
		return nil, errors.Persistencef(err, "load items of %s", userID)
	}
	rec.Inventory = items
	return rec, nil
}

func (s *PgStore) loadItems(ctx context.Context, userID string) ([]RecordItem, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT item_id, fingerprint, modifiers, equipped_slot
		 FROM character_items WHERE user_id = $1
		 ORDER BY position`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RecordItem
	for rows.Next() {
		var (
			it   RecordItem
			mods []byte
		)
		if err := rows.Scan(&it.ItemID, &it.Fingerprint, &mods, &it.EquippedSlot); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(mods, &it.Modifiers); err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	return result, rows.Err()
}

// Save upserts the character row and replaces its items in one transaction.
func (s *PgStore) Save(ctx context.Context, rec *Record) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return errors.Persistencef(err, "save %s: begin", rec.UserID)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO characters (
			user_id, name, map_id, x, y,
			health, health_max, money, bank, exp, enh_points, accuracy,
			faction_id, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13, now())
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name, map_id = EXCLUDED.map_id,
			x = EXCLUDED.x, y = EXCLUDED.y,
			health = EXCLUDED.health, health_max = EXCLUDED.health_max,
			money = EXCLUDED.money, bank = EXCLUDED.bank, exp = EXCLUDED.exp,
			enh_points = EXCLUDED.enh_points, accuracy = EXCLUDED.accuracy,
			faction_id = EXCLUDED.faction_id, updated_at = now()`,
		rec.UserID, rec.Name, rec.Location.Map, rec.Location.X, rec.Location.Y,
		rec.Stats.Health, rec.Stats.HealthMax, rec.Stats.Money, rec.Stats.Bank,
		rec.Stats.Exp, rec.Stats.EnhPoints, rec.Stats.Accuracy,
		rec.FactionID,
	); err != nil {
		return errors.Persistencef(err, "save character %s", rec.UserID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM character_items WHERE user_id = $1`, rec.UserID); err != nil {
		return errors.Persistencef(err, "clear items of %s", rec.UserID)
	}

	batch := &pgx.Batch{}
	for i, it := range rec.Inventory {
		mods, err := json.Marshal(it.Modifiers)
		if err != nil {
			return errors.Persistencef(err, "encode item %s", it.Fingerprint)
		}
		batch.Queue(
			`INSERT INTO character_items (user_id, position, item_id, fingerprint, modifiers, equipped_slot)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			rec.UserID, i, it.ItemID, it.Fingerprint, mods, it.EquippedSlot,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return errors.Persistencef(err, "save items of %s", rec.UserID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Persistencef(err, "save %s: commit", rec.UserID)
	}
	return nil
}
