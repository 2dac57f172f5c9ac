package persist

import (
	"context"

	"github.com/l1jgo/gridworld/internal/errors"
)

// LoadFactions loads every faction. Called at server startup.
func (s *PgStore) LoadFactions(ctx context.Context) ([]FactionRecord, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT id, name, tag, leader_id FROM factions ORDER BY name`)
	if err != nil {
		return nil, errors.Persistence(err, "load factions")
	}
	defer rows.Close()

	var result []FactionRecord
	for rows.Next() {
		var f FactionRecord
		if err := rows.Scan(&f.ID, &f.Name, &f.Tag, &f.LeaderID); err != nil {
			return nil, errors.Persistence(err, "scan faction")
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Persistence(err, "load factions")
	}
	return result, nil
}

func (s *PgStore) SaveFaction(ctx context.Context, f FactionRecord) error {
	_, err := s.db.Pool.Exec(ctx,
		`INSERT INTO factions (id, name, tag, leader_id) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, tag = EXCLUDED.tag, leader_id = EXCLUDED.leader_id`,
		f.ID, f.Name, f.Tag, f.LeaderID,
	)
	if err != nil {
		return errors.Persistencef(err, "save faction %s", f.ID)
	}
	return nil
}

// DeleteFaction removes a disbanded faction. Member rows still naming it
// are cleared lazily when the member next logs in.
func (s *PgStore) DeleteFaction(ctx context.Context, id string) error {
	if _, err := s.db.Pool.Exec(ctx, `DELETE FROM factions WHERE id = $1`, id); err != nil {
		return errors.Persistencef(err, "delete faction %s", id)
	}
	return nil
}
