package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahmoud-mohsen97/Chat-Agents/store"
	"github.com/mahmoud-mohsen97/Chat-Agents/store/storetest"
)

func TestRedisReportStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s := NewRedisReportStore(RedisOptions{Addr: mr.Addr()})
	defer s.Close()

	var _ store.ReportStore = s
	storetest.Run(t, s)
}

func TestRedisReportStore_Keys(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s := NewRedisReportStore(RedisOptions{Addr: mr.Addr(), Prefix: "test:"})
	defer s.Close()

	require.NoError(t, s.Save(context.Background(), storetest.NewReport("r1", 0)))
	assert.True(t, mr.Exists("test:report:r1"))

	members, err := mr.ZMembers("test:reports")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, members)
}

func TestRedisReportStore_SkipsMissingKeys(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s := NewRedisReportStore(RedisOptions{Addr: mr.Addr()})
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, storetest.NewReport("kept", 0)))
	require.NoError(t, s.Save(ctx, storetest.NewReport("gone", 1)))
	mr.Del("chatagents:report:gone")

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "kept", list[0].ID)
}

func TestRedisReportStore_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	s := NewRedisReportStore(RedisOptions{Addr: addr})
	defer s.Close()

	err = s.Save(context.Background(), storetest.NewReport("r1", 0))
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrExists)
}
