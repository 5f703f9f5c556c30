package mongo

import (
	"context"
	"sync"
	"testing"

	"voicelog/internal/config"
	"voicelog/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// stubDriver implements the driver interface for testing
type stubDriver struct{}

const (
	msgClientShouldBeNil = "client should be nil on connection failure"
	msgDBShouldBeNil     = "db should be nil on connection failure"
	mongoTestURI         = "mongodb://invalid/?connectTimeoutMS=1&serverSelectionTimeoutMS=1"
)

func (stubDriver) Connect(_ context.Context, _ *options.ClientOptions) (*mongo.Client, error) {
	return nil, context.DeadlineExceeded // fail immediately to avoid retry delays
}

func (stubDriver) Ping(_ context.Context, _ *mongo.Client) error {
	return context.DeadlineExceeded
}

func (stubDriver) Disconnect(_ context.Context, _ *mongo.Client) error { return nil }

// withStubDriver temporarily replaces the global driver with a stub for testing
func withStubDriver(t *testing.T) func() {
	t.Helper()
	old := drv
	drv = stubDriver{}
	return func() { drv = old }
}

func testMongoConfig() config.Config {
	return config.Config{
		MongoURI:    mongoTestURI,
		MongoDBName: "test",
		LogLevel:    "error",
		LogFormat:   "json",
	}
}

func TestMongoClientConnectFailure(t *testing.T) {
	defer withStubDriver(t)()
	reset()
	defer reset()

	log, err := logger.Init(testMongoConfig())
	require.NoError(t, err)

	cli, database, err := Init(context.Background(), testMongoConfig(), log)
	assert.Error(t, err)
	assert.Nil(t, cli, msgClientShouldBeNil)
	assert.Nil(t, database, msgDBShouldBeNil)

	assert.Nil(t, Client(), msgClientShouldBeNil)
	assert.Nil(t, DB(), msgDBShouldBeNil)
}

func TestMongoClientShutdownWithoutInit(t *testing.T) {
	reset()
	defer reset()

	// Shutdown must be a no-op when nothing was initialized.
	assert.NoError(t, Shutdown(context.Background()))
	assert.NoError(t, Shutdown(context.Background()))
}

func TestMongoClientInitConcurrent(t *testing.T) {
	defer withStubDriver(t)()
	reset()
	defer reset()

	log, err := logger.Init(testMongoConfig())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = Init(context.Background(), testMongoConfig(), log)
		}()
	}
	wg.Wait()

	assert.Nil(t, Client(), msgClientShouldBeNil)
}
