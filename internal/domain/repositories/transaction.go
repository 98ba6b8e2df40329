package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions. An import run stages all
// of its writes inside one transaction: ExecTx commits when fn returns nil
// and rolls back otherwise, so a failed or cancelled run leaves no rows.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
