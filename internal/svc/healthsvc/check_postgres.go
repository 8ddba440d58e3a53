package healthsvc

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const (
	sqlActiveOperations = `SELECT COUNT(*) AS total FROM pg_stat_activity WHERE state = 'active';`

	sqlBlockedLocks = `SELECT
	blocked_locks.pid AS blocked_pid,
	blocked_locks.virtualtransaction AS blocked_transaction_id,
	blocked_activity.usename AS blocked_user,
	blocking_locks.pid AS blocking_pid,
	blocking_locks.virtualtransaction AS blocking_transaction_id,
	blocking_activity.usename AS blocking_user,
	blocked_activity.query AS blocked_statement,
	blocking_activity.query AS blocking_statement
FROM pg_catalog.pg_locks blocked_locks
JOIN pg_catalog.pg_stat_activity blocked_activity ON blocked_activity.pid = blocked_locks.pid
JOIN pg_catalog.pg_locks blocking_locks
	ON blocking_locks.locktype = blocked_locks.locktype
	AND blocking_locks.database IS NOT DISTINCT FROM blocked_locks.database
	AND blocking_locks.relation IS NOT DISTINCT FROM blocked_locks.relation
	AND blocking_locks.page IS NOT DISTINCT FROM blocked_locks.page
	AND blocking_locks.tuple IS NOT DISTINCT FROM blocked_locks.tuple
	AND blocking_locks.virtualxid IS NOT DISTINCT FROM blocked_locks.virtualxid
	AND blocking_locks.transactionid IS NOT DISTINCT FROM blocked_locks.transactionid
	AND blocking_locks.classid IS NOT DISTINCT FROM blocked_locks.classid
	AND blocking_locks.objid IS NOT DISTINCT FROM blocked_locks.objid
	AND blocking_locks.objsubid IS NOT DISTINCT FROM blocked_locks.objsubid
	AND blocking_locks.pid != blocked_locks.pid
JOIN pg_catalog.pg_stat_activity blocking_activity ON blocking_activity.pid = blocking_locks.pid
WHERE NOT blocked_locks.granted;`
)

type PostgresStatus struct {
	Status
	ActiveOperations int64 `json:"activeOperations"`

	// Deadlock is true when there is at least one lock waiting for another.
	Deadlock           bool                `json:"deadlock"`
	DeadlockOperations []DeadlockOperation `json:"deadlockOperations"`
}

type DeadlockOperation struct {
	Blocked  LockHolder `json:"blocked"`
	Blocking LockHolder `json:"blocking"`
}

type LockHolder struct {
	PID       int64  `json:"pid"`
	TxID      string `json:"txId"`
	User      string `json:"user"`
	Statement string `json:"statement"`
}

// blockedLockRow use sql.NullString for pg_stat_activity columns,
// usename and query are null for background process or when the caller lacks pg_read_all_stats.
type blockedLockRow struct {
	BlockedPID        int64          `db:"blocked_pid"`
	BlockedTxID       sql.NullString `db:"blocked_transaction_id"`
	BlockedUser       sql.NullString `db:"blocked_user"`
	BlockingPID       int64          `db:"blocking_pid"`
	BlockingTxID      sql.NullString `db:"blocking_transaction_id"`
	BlockingUser      sql.NullString `db:"blocking_user"`
	BlockedStatement  sql.NullString `db:"blocked_statement"`
	BlockingStatement sql.NullString `db:"blocking_statement"`
}

type PostgresChecker struct {
	name string
	db   sqlx.QueryerContext
}

var _ Checker = (*PostgresChecker)(nil)

func NewPostgresChecker(name string, db sqlx.QueryerContext) *PostgresChecker {
	return &PostgresChecker{name: name, db: db}
}

func (p *PostgresChecker) Name() string {
	return p.name
}

func (p *PostgresChecker) Check(ctx context.Context) Report {
	var active int64
	err := sqlx.GetContext(ctx, p.db, &active, sqlActiveOperations)
	if err != nil {
		return PostgresStatus{Status: down(fmt.Errorf("count active operations: %w", err))}
	}

	rows := make([]blockedLockRow, 0)
	err = sqlx.SelectContext(ctx, p.db, &rows, sqlBlockedLocks)
	if err != nil {
		return PostgresStatus{Status: down(fmt.Errorf("list blocked locks: %w", err))}
	}

	ops := make([]DeadlockOperation, 0, len(rows))
	for _, row := range rows {
		ops = append(ops, DeadlockOperation{
			Blocked: LockHolder{
				PID:       row.BlockedPID,
				TxID:      row.BlockedTxID.String,
				User:      row.BlockedUser.String,
				Statement: row.BlockedStatement.String,
			},
			Blocking: LockHolder{
				PID:       row.BlockingPID,
				TxID:      row.BlockingTxID.String,
				User:      row.BlockingUser.String,
				Statement: row.BlockingStatement.String,
			},
		})
	}

	return PostgresStatus{
		Status:             up(),
		ActiveOperations:   active,
		Deadlock:           len(ops) > 0,
		DeadlockOperations: ops,
	}
}
