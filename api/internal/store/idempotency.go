// Package store persists replayable responses in Postgres through the pgx
// stdlib driver. The store is optional: without DATABASE_URL the gateway
// runs with idempotency replay disabled.
package store

import (
	"context"
	"database/sql"
)

type IdempotencyRepo struct{ DB *sql.DB }

func NewIdempotencyRepo(db *sql.DB) *IdempotencyRepo { return &IdempotencyRepo{DB: db} }

// InitSchema creates the idempotency table when it does not exist yet.
func InitSchema(ctx context.Context, db *sql.DB) error {
	const q = `
create table if not exists idempotency (
    id            bigserial primary key,
    idem_key      varchar(120) not null unique,
    license_key   text         not null,
    status        int          not null,
    response_json text         not null,
    created_at    timestamptz  not null default now()
)`
	_, err := db.ExecContext(ctx, q)
	return err
}

// Find returns the stored response for the idempotency key under the given
// license, or sql.ErrNoRows when that license never saw the key. Scoping by
// license_key keeps one caller's responses invisible to every other caller.
func (r *IdempotencyRepo) Find(ctx context.Context, idemKey, licenseKey string) (int, []byte, error) {
	const q = `select status, response_json from idempotency where idem_key=$1 and license_key=$2`
	var (
		status int
		body   []byte
	)
	if err := r.DB.QueryRowContext(ctx, q, idemKey, licenseKey).Scan(&status, &body); err != nil {
		return 0, nil, err
	}
	return status, body, nil
}

// Save records the response for the key. The first writer wins; a
// concurrent duplicate insert is ignored.
func (r *IdempotencyRepo) Save(ctx context.Context, idemKey, licenseKey string, status int, body []byte) error {
	const q = `
insert into idempotency(idem_key, license_key, status, response_json)
values ($1,$2,$3,$4)
on conflict (idem_key) do nothing`
	_, err := r.DB.ExecContext(ctx, q, idemKey, licenseKey, status, string(body))
	return err
}
