package mongo

import (
	"context"
	"fmt"
	apperrors "rentora/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// TransactionFunc receives a context bound to the session; repository calls
// made with it participate in the transaction.
type TransactionFunc func(ctx context.Context) error

// TransactionManager runs multi-document write sequences as one unit. The
// lifecycle coordinator wraps every cross-entity transition in it so room
// status, property counters and ledger records commit or abort together.
type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
}

func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{
		client: client,
	}
}

func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	})

	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}
