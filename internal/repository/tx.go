package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// TxRunner executes a function inside a single transaction. Every repository
// call made with the context passed to fn joins that transaction.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type mongoTxRunner struct {
	client *mongo.Client
}

// NewMongoTxRunner creates a TxRunner backed by a MongoDB session.
func NewMongoTxRunner(client *mongo.Client) TxRunner {
	return &mongoTxRunner{client: client}
}

func (t *mongoTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}
