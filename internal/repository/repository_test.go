package repository

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type redisFixture struct {
	client *redis.Client
	mr     *miniredis.Miniredis
}

// newTestClient spins up an in-process store for one test
func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func newFixture(t *testing.T) *redisFixture {
	t.Helper()
	client, mr := newTestClient(t)
	return &redisFixture{client: client, mr: mr}
}
