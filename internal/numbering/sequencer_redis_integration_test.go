//go:build integration

package numbering_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"homestay/internal/numbering"
	"homestay/pkg/testutil/containers"
)

type RedisSequencerSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	seq   *numbering.RedisSequencer
}

func TestRedisSequencerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisSequencerSuite))
}

func (s *RedisSequencerSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.seq = numbering.NewRedisSequencer(s.redis.Client)
}

func (s *RedisSequencerSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisSequencerSuite) TestFirstValueFollowsSeed() {
	ctx := context.Background()
	v, err := s.seq.Next(ctx, "legacy:SHI:2025", 500)
	s.Require().NoError(err)
	s.Equal(int64(501), v)

	v, err = s.seq.Next(ctx, "legacy:SHI:2025", 500)
	s.Require().NoError(err)
	s.Equal(int64(502), v)
}

func (s *RedisSequencerSuite) TestConcurrentCallsNeverRepeat() {
	ctx := context.Background()
	const workers = 50

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		seen = make(map[int64]struct{}, workers)
		errs []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.seq.Next(ctx, "primary:KLU:2025", 0)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			seen[v] = struct{}{}
		}()
	}
	wg.Wait()

	s.Empty(errs)
	s.Len(seen, workers)
}
