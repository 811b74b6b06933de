package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// SessionClient runs a function inside a MongoDB session transaction.
// Satisfied by pkg/mongodb.Client.
type SessionClient interface {
	WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error
}

// TransactionRunner implements domain.TransactionRunner on top of MongoDB
// multi-document transactions.
type TransactionRunner struct {
	client SessionClient
}

// NewTransactionRunner creates a new TransactionRunner
func NewTransactionRunner(client SessionClient) *TransactionRunner {
	return &TransactionRunner{client: client}
}

// Run executes fn inside a transaction. Stock decrements and the order
// insert must land together or not at all.
func (t *TransactionRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		return fn(sessCtx)
	})
}
