package mongodb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/deviceorder/fulfillment-service/internal/domain"
)

type fakeSessionClient struct {
	calls int
	err   error
}

func (f *fakeSessionClient) WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(mongo.NewSessionContext(ctx, nil))
}

func TestTransactionRunnerDelegatesToSessionClient(t *testing.T) {
	client := &fakeSessionClient{}
	runner := NewTransactionRunner(client)

	ran := false
	err := runner.Run(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 1, client.calls)
}

func TestTransactionRunnerPropagatesFnError(t *testing.T) {
	runner := NewTransactionRunner(&fakeSessionClient{})

	err := runner.Run(context.Background(), func(ctx context.Context) error {
		return domain.ErrStockConflict
	})

	assert.ErrorIs(t, err, domain.ErrStockConflict)
}

func TestTransactionRunnerPropagatesSessionError(t *testing.T) {
	sessionErr := errors.New("no replica set")
	runner := NewTransactionRunner(&fakeSessionClient{err: sessionErr})

	err := runner.Run(context.Background(), func(ctx context.Context) error {
		t.Fatal("fn must not run when the session cannot start")
		return nil
	})

	assert.ErrorIs(t, err, sessionErr)
}
