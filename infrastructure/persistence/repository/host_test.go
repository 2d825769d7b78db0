package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/promptroom/api/domain/model"
)

func testHostRecord() *model.HostRecord {
	return &model.HostRecord{
		HostAddr:      "0xhost",
		RecvAddr:      "0xrecv",
		RatePerK:      0.001,
		ModelEndpoint: "http://127.0.0.1:1234",
		ModelID:       "qwen2.5-7b-instruct",
		Connected:     true,
		LastSeen:      time.Now().UnixMilli(),
	}
}

func Test_Host_RoundTrip(t *testing.T) {
	req := require.New(t)
	_, client := newTestClient(t)
	repo := NewHostRepository(client)
	ctx := context.Background()

	record, err := repo.Get(ctx, "global")
	req.NoError(err)
	req.Nil(record)

	want := testHostRecord()
	req.NoError(repo.Set(ctx, "global", want, 45*time.Second))

	record, err = repo.Get(ctx, "global")
	req.NoError(err)
	req.NotNil(record)
	req.Equal(want.HostAddr, record.HostAddr)
	req.Equal(want.RatePerK, record.RatePerK)
	req.True(record.Connected)
}

func Test_Host_KeyExpiryIsTheReaper(t *testing.T) {
	req := require.New(t)
	mr, client := newTestClient(t)
	repo := NewHostRepository(client)
	ctx := context.Background()

	req.NoError(repo.Set(ctx, "global", testHostRecord(), 45*time.Second))

	mr.FastForward(46 * time.Second)

	record, err := repo.Get(ctx, "global")
	req.NoError(err)
	req.Nil(record)
}

func Test_Host_CorruptRecordSurfacesTypedError(t *testing.T) {
	req := require.New(t)
	mr, client := newTestClient(t)
	repo := NewHostRepository(client)

	keys := model.ResolveRoomKeys("global")
	req.NoError(mr.Set(keys.HostKey, "{broken"))

	_, err := repo.Get(context.Background(), "global")
	req.ErrorIs(err, model.ErrCorruptHostState)
}

func Test_Host_Delete(t *testing.T) {
	req := require.New(t)
	_, client := newTestClient(t)
	repo := NewHostRepository(client)
	ctx := context.Background()

	req.NoError(repo.Set(ctx, "global", testHostRecord(), 45*time.Second))
	req.NoError(repo.Delete(ctx, "global"))

	record, err := repo.Get(ctx, "global")
	req.NoError(err)
	req.Nil(record)
}
