package store

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	rediscontainer "github.com/testcontainers/testcontainers-go/modules/redis"
)

var (
	testRedisURL   string
	redisContainer testcontainers.Container
)

func TestMain(m *testing.M) {
	flag.Parse()

	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	var err error
	redisContainer, err = rediscontainer.Run(ctx, "redis:7-alpine")
	if err != nil {
		// No docker: the unit tests still run, the Redis ones skip.
		fmt.Fprintf(os.Stderr, "redis container unavailable: %v\n", err)
		os.Exit(m.Run())
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get redis endpoint: %v\n", err)
		os.Exit(1)
	}
	testRedisURL = "redis://" + endpoint

	code := m.Run()
	if err := redisContainer.Terminate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to terminate redis container: %v\n", err)
	}
	os.Exit(code)
}

func setupRedis(t *testing.T) *Redis {
	t.Helper()
	if testRedisURL == "" {
		t.Skip("skipping redis integration test")
	}

	ctx := context.Background()
	r, err := NewRedis(ctx, testRedisURL)
	require.NoError(t, err)
	require.NoError(t, r.rdb.FlushAll(ctx).Err())

	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRedis(t *testing.T) {
	exerciseMedium(t, setupRedis(t))
}

func TestNewRedis_BadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "not-a-url")
	require.Error(t, err)
}
