package billingpg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"weighstation/internal/billing"
)

// Store backs billing.Store with a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx billing.Tx) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(pgTx pgx.Tx) error {
		return fn(ctx, &txImpl{tx: pgTx})
	})
}

type txImpl struct {
	tx pgx.Tx
}

func (t *txImpl) CreateProvider(ctx context.Context, name string) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO providers (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	return id, err
}

func (t *txImpl) ProviderByName(ctx context.Context, name string) (*billing.Provider, error) {
	var p billing.Provider
	err := t.tx.QueryRow(ctx, `SELECT id, name FROM providers WHERE name = $1`, name).Scan(&p.ID, &p.Name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (t *txImpl) ProviderByID(ctx context.Context, id int64) (*billing.Provider, error) {
	var p billing.Provider
	err := t.tx.QueryRow(ctx, `SELECT id, name FROM providers WHERE id = $1`, id).Scan(&p.ID, &p.Name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (t *txImpl) RenameProvider(ctx context.Context, id int64, name string) error {
	_, err := t.tx.Exec(ctx, `UPDATE providers SET name = $1 WHERE id = $2`, name, id)
	return err
}

func (t *txImpl) CreateTruck(ctx context.Context, truckID string, providerID int64) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO trucks (truck_id, provider_id) VALUES ($1, $2)`, truckID, providerID)
	return err
}

func (t *txImpl) TruckByID(ctx context.Context, truckID string) (*billing.TruckOwnership, error) {
	var to billing.TruckOwnership
	err := t.tx.QueryRow(ctx, `SELECT truck_id, provider_id FROM trucks WHERE truck_id = $1`, truckID).Scan(&to.TruckID, &to.ProviderID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &to, nil
}

func (t *txImpl) ReassignTruck(ctx context.Context, truckID string, providerID int64) error {
	_, err := t.tx.Exec(ctx, `UPDATE trucks SET provider_id = $1 WHERE truck_id = $2`, providerID, truckID)
	return err
}

func (t *txImpl) TrucksForProvider(ctx context.Context, providerID int64) ([]string, error) {
	rows, err := t.tx.Query(ctx, `SELECT truck_id FROM trucks WHERE provider_id = $1`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (t *txImpl) ReplaceRates(ctx context.Context, rates []billing.Rate) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM rates`); err != nil {
		return err
	}
	for _, r := range rates {
		if _, err := t.tx.Exec(ctx, `INSERT INTO rates (product, rate, scope) VALUES ($1, $2, $3)`, r.Product, r.Rate, r.Scope); err != nil {
			return err
		}
	}
	return nil
}

func (t *txImpl) Rates(ctx context.Context) ([]billing.Rate, error) {
	rows, err := t.tx.Query(ctx, `SELECT product, rate, scope FROM rates`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []billing.Rate
	for rows.Next() {
		var r billing.Rate
		if err := rows.Scan(&r.Product, &r.Rate, &r.Scope); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
