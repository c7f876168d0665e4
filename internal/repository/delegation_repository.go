package repository

import (
    "context"
    "database/sql"
    "time"
)

// DelegationRepo persists the delegated provider's credential between
// process restarts.  It is the adapter's own storage: nothing outside the
// delegated provider reads it.  A single row is outstanding at a time; a
// new delegation revokes all previous ones.
type DelegationRepo struct{ DB *sql.DB }

func NewDelegationRepo(db *sql.DB) *DelegationRepo { return &DelegationRepo{DB: db} }

// Store inserts a delegation row after revoking any still-active ones.
func (r *DelegationRepo) Store(ctx context.Context, principal, tokenHash, token string, exp time.Time) error {
    if err := r.RevokeAll(ctx); err != nil {
        return err
    }
    _, err := r.DB.ExecContext(ctx,
        "INSERT INTO delegations (principal, token_hash, token, expires_at) VALUES (?,?,?,?)",
        principal, tokenHash, token, exp)
    return err
}

// Active returns the newest non-revoked, non-expired delegation.  A missing
// or expired row yields sql.ErrNoRows.
func (r *DelegationRepo) Active(ctx context.Context) (principal, token string, err error) {
    var (
        expiresAt time.Time
        revokedAt sql.NullTime
    )
    err = r.DB.QueryRowContext(ctx,
        "SELECT principal, token, expires_at, revoked_at FROM delegations ORDER BY id DESC LIMIT 1").
        Scan(&principal, &token, &expiresAt, &revokedAt)
    if err != nil {
        return "", "", err
    }
    if revokedAt.Valid || time.Now().UTC().After(expiresAt) {
        return "", "", sql.ErrNoRows
    }
    return principal, token, nil
}

// RevokeAll marks every active delegation as revoked.  Used on logout and
// before storing a fresh delegation.
func (r *DelegationRepo) RevokeAll(ctx context.Context) error {
    _, err := r.DB.ExecContext(ctx,
        "UPDATE delegations SET revoked_at=NOW() WHERE revoked_at IS NULL")
    return err
}
