package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBytes(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := Wrap(db)
	ctx := context.Background()

	mock.ExpectGet("pricing:snapshot").SetVal(`{"version":3}`)
	data, err := client.GetBytes(ctx, "pricing:snapshot")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":3}`, string(data))

	mock.ExpectGet("pricing:missing").RedisNil()
	_, err = client.GetBytes(ctx, "pricing:missing")
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectGet("pricing:broken").SetErr(errors.New("connection reset"))
	_, err = client.GetBytes(ctx, "pricing:broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetBytesAndDelete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := Wrap(db)
	ctx := context.Background()

	mock.ExpectSet("k", []byte("v"), time.Minute).SetVal("OK")
	require.NoError(t, client.SetBytes(ctx, "k", []byte("v"), time.Minute))

	mock.ExpectSet("k", []byte("v"), 0).SetErr(errors.New("OOM"))
	assert.Error(t, client.SetBytes(ctx, "k", []byte("v"), 0))

	mock.ExpectDel("k").SetVal(1)
	require.NoError(t, client.Delete(ctx, "k"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := Wrap(db)

	mock.ExpectPing().SetErr(errors.New("dial tcp: refused"))
	assert.Error(t, client.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
