package weighpg

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"weighstation/internal/weigh"
)

// Store backs weigh.Store with a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx weigh.Tx) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(pgTx pgx.Tx) error {
		return fn(ctx, &txImpl{tx: pgTx})
	})
}

type txImpl struct {
	tx pgx.Tx
}

func (t *txImpl) LatestForTruck(ctx context.Context, truck string) (*weigh.Transaction, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT id, session_id, datetime, direction, truck, containers, bruto, truck_tara, neto, produce
		FROM transactions WHERE truck = $1 ORDER BY id DESC LIMIT 1`, truck)
	return scanOptional(row)
}

func (t *txImpl) LatestGlobal(ctx context.Context) (*weigh.Transaction, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT id, session_id, datetime, direction, truck, containers, bruto, truck_tara, neto, produce
		FROM transactions ORDER BY id DESC LIMIT 1`)
	return scanOptional(row)
}

func (t *txImpl) DeleteTransaction(ctx context.Context, id int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	return err
}

func (t *txImpl) InsertTransaction(ctx context.Context, row *weigh.Transaction) (int64, error) {
	containers := weigh.JoinContainers(row.Containers)
	if row.Session == 0 {
		var id int64
		err := t.tx.QueryRow(ctx, `
			WITH ins AS (
				INSERT INTO transactions (session_id, datetime, direction, truck, containers, bruto, truck_tara, neto, produce)
				VALUES (0, $1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id
			)
			UPDATE transactions SET session_id = ins.id
			FROM ins WHERE transactions.id = ins.id
			RETURNING transactions.id`,
			row.DateTime, string(row.Direction), row.Truck, containers, row.Bruto, row.TruckTara, row.Neto, row.Produce,
		).Scan(&id)
		return id, err
	}

	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO transactions (session_id, datetime, direction, truck, containers, bruto, truck_tara, neto, produce)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		row.Session, row.DateTime, string(row.Direction), row.Truck, containers, row.Bruto, row.TruckTara, row.Neto, row.Produce,
	).Scan(&id)
	return id, err
}

func (t *txImpl) UpdateInRow(ctx context.Context, id int64, truckTara int, neto *int) error {
	_, err := t.tx.Exec(ctx, `UPDATE transactions SET truck_tara = $1, neto = $2 WHERE id = $3`, truckTara, neto, id)
	return err
}

func (t *txImpl) GetTransaction(ctx context.Context, id int64) (*weigh.Transaction, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT id, session_id, datetime, direction, truck, containers, bruto, truck_tara, neto, produce
		FROM transactions WHERE id = $1`, id)
	return scanOptional(row)
}

func (t *txImpl) ListTransactions(ctx context.Context, from, to time.Time, dirs []weigh.Direction) ([]weigh.Transaction, error) {
	strDirs := make([]string, len(dirs))
	for i, d := range dirs {
		strDirs[i] = string(d)
	}
	rows, err := t.tx.Query(ctx, `
		SELECT id, session_id, datetime, direction, truck, containers, bruto, truck_tara, neto, produce
		FROM transactions
		WHERE datetime BETWEEN $1 AND $2 AND direction = ANY($3)
		ORDER BY id`, from, to, strDirs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []weigh.Transaction
	for rows.Next() {
		var r weigh.Transaction
		var direction, containers string
		if err := rows.Scan(&r.ID, &r.Session, &r.DateTime, &direction, &r.Truck, &containers, &r.Bruto, &r.TruckTara, &r.Neto, &r.Produce); err != nil {
			return nil, err
		}
		r.Direction = weigh.Direction(direction)
		r.Containers = weigh.SplitContainers(containers)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (t *txImpl) TruckInSessionIDs(ctx context.Context, truck string, from, to time.Time) ([]int64, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id FROM transactions
		WHERE truck = $1 AND direction = $2 AND datetime BETWEEN $3 AND $4
		ORDER BY id`, truck, string(weigh.DirIn), from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInt64s(rows)
}

func (t *txImpl) ContainerSessionIDs(ctx context.Context, containerID string, from, to time.Time) ([]int64, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, containers FROM transactions
		WHERE direction IN ($1, $2) AND datetime BETWEEN $3 AND $4
		ORDER BY id`, string(weigh.DirIn), string(weigh.DirNone), from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		var containers string
		if err := rows.Scan(&id, &containers); err != nil {
			return nil, err
		}
		if weigh.ContainsContainer(weigh.SplitContainers(containers), containerID) {
			out = append(out, id)
		}
	}
	return out, rows.Err()
}

func (t *txImpl) LastTruckTara(ctx context.Context, truck string) (*int, error) {
	var tara *int
	err := t.tx.QueryRow(ctx, `
		SELECT truck_tara FROM transactions
		WHERE truck = $1 AND truck_tara IS NOT NULL
		ORDER BY id DESC LIMIT 1`, truck).Scan(&tara)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return tara, nil
}

func (t *txImpl) TruckKnown(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM transactions WHERE truck = $1)`, id).Scan(&exists)
	return exists, err
}

func (t *txImpl) ContainerKnownInTransactions(ctx context.Context, id string) (bool, error) {
	rows, err := t.tx.Query(ctx, `SELECT containers FROM transactions WHERE containers <> ''`)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var containers string
		if err := rows.Scan(&containers); err != nil {
			return false, err
		}
		if weigh.ContainsContainer(weigh.SplitContainers(containers), id) {
			return true, nil
		}
	}
	return false, rows.Err()
}

func (t *txImpl) GetContainer(ctx context.Context, id string) (*weigh.ContainerRegistration, error) {
	var reg weigh.ContainerRegistration
	var unit string
	err := t.tx.QueryRow(ctx, `
		SELECT container_id, weight, unit FROM containers_registered WHERE container_id = $1`, id,
	).Scan(&reg.ContainerID, &reg.Weight, &unit)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	reg.Unit = weigh.Unit(unit)
	return &reg, nil
}

func (t *txImpl) RegisterContainers(ctx context.Context, regs []weigh.ContainerRegistration) error {
	for _, reg := range regs {
		_, err := t.tx.Exec(ctx, `
			INSERT INTO containers_registered (container_id, weight, unit)
			VALUES ($1, $2, $3)
			ON CONFLICT (container_id) DO UPDATE SET weight = $2, unit = $3`,
			reg.ContainerID, reg.Weight, string(reg.Unit))
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *txImpl) UnknownContainers(ctx context.Context) ([]string, error) {
	rows, err := t.tx.Query(ctx, `SELECT containers FROM transactions WHERE containers <> ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := map[string]bool{}
	for rows.Next() {
		var containers string
		if err := rows.Scan(&containers); err != nil {
			return nil, err
		}
		for _, id := range weigh.SplitContainers(containers) {
			seen[id] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var unknown []string
	for id := range seen {
		reg, err := t.GetContainer(ctx, id)
		if err != nil {
			return nil, err
		}
		if reg == nil {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	return unknown, nil
}

func (t *txImpl) PendingNeto(ctx context.Context) ([]weigh.Transaction, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, session_id, datetime, direction, truck, containers, bruto, truck_tara, neto, produce
		FROM transactions
		WHERE neto IS NULL AND direction IN ($1, $2)
		ORDER BY id`, string(weigh.DirOut), string(weigh.DirNone))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []weigh.Transaction
	for rows.Next() {
		var r weigh.Transaction
		var direction, containers string
		if err := rows.Scan(&r.ID, &r.Session, &r.DateTime, &direction, &r.Truck, &containers, &r.Bruto, &r.TruckTara, &r.Neto, &r.Produce); err != nil {
			return nil, err
		}
		r.Direction = weigh.Direction(direction)
		r.Containers = weigh.SplitContainers(containers)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (t *txImpl) UpdateNeto(ctx context.Context, id int64, neto int) error {
	_, err := t.tx.Exec(ctx, `UPDATE transactions SET neto = $1 WHERE id = $2`, neto, id)
	return err
}

func (t *txImpl) OutRowForInSession(ctx context.Context, inSessionID int64, truck string) (*weigh.Transaction, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT id, session_id, datetime, direction, truck, containers, bruto, truck_tara, neto, produce
		FROM transactions
		WHERE session_id = $1 AND truck = $2 AND direction = $3
		ORDER BY id DESC LIMIT 1`, inSessionID, truck, string(weigh.DirOut))
	return scanOptional(row)
}

func scanInt64s(rows pgx.Rows) ([]int64, error) {
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanOptional(row pgx.Row) (*weigh.Transaction, error) {
	var r weigh.Transaction
	var direction, containers string
	err := row.Scan(&r.ID, &r.Session, &r.DateTime, &direction, &r.Truck, &containers, &r.Bruto, &r.TruckTara, &r.Neto, &r.Produce)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	r.Direction = weigh.Direction(direction)
	r.Containers = weigh.SplitContainers(containers)
	return &r, nil
}
