package mongo

import (
	"context"
	"errors"
	"fmt"

	apperrors "hallbook/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	labelTransientTransaction = "TransientTransactionError"
	labelUnknownCommitResult  = "UnknownTransactionCommitResult"
	codeWriteConflict         = 112

	// maxCommitAttempts bounds commit retries on an unknown commit result.
	// Committing again is safe: the server applies a transaction at most once.
	maxCommitAttempts = 3
)

// TransactionFunc runs inside a transaction. The context it receives carries the
// session, so repository calls made with it join the transaction.
type TransactionFunc func(ctx context.Context) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
	opts   *options.TransactionOptions
}

func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{
		client: client,
		opts: options.Transaction().
			SetReadConcern(readconcern.Snapshot()).
			SetWriteConcern(writeconcern.Majority()),
	}
}

// ExecuteTransaction runs fn in a single transaction attempt. Unlike
// session.WithTransaction it never retries on its own; callers decide how many
// attempts a transient failure deserves.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(context.WithoutCancel(ctx))

	err = mongo.WithSession(ctx, session, func(sessCtx mongo.SessionContext) error {
		if err := session.StartTransaction(m.opts); err != nil {
			return fmt.Errorf("failed to start transaction: %w", err)
		}

		if err := fn(sessCtx); err != nil {
			_ = session.AbortTransaction(context.WithoutCancel(sessCtx))
			return err
		}

		return commitWithRetry(sessCtx, session.CommitTransaction)
	})

	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// commitWithRetry repeats commit while the outcome of the previous commit is
// unknown, the way session.WithTransaction does, without rerunning the body.
func commitWithRetry(ctx context.Context, commit func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		err = commit(ctx)
		if err == nil || !hasErrorLabel(err, labelUnknownCommitResult) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

func hasErrorLabel(err error, label string) bool {
	var labeled interface{ HasErrorLabel(string) bool }
	return errors.As(err, &labeled) && labeled.HasErrorLabel(label)
}

// IsTransientError reports whether err is a storage failure that may succeed when the
// whole transaction is run again: write conflicts, transient transaction labels,
// duplicate keys raced on insert, and network errors.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}

	if hasErrorLabel(err, labelTransientTransaction) || hasErrorLabel(err, labelUnknownCommitResult) {
		return true
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == codeWriteConflict {
		return true
	}

	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			if we.Code == codeWriteConflict {
				return true
			}
		}
	}

	return mongo.IsDuplicateKeyError(err) || mongo.IsNetworkError(err)
}
