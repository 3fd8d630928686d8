//go:build integration

package xsource_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/omeyang/xlazy/pkg/resilience/xretry"
	"github.com/omeyang/xlazy/pkg/suspense/xlazy"
	"github.com/omeyang/xlazy/pkg/suspense/xsource"
)

// startContainer 启动容器并返回 host:port，不可用时跳过测试。
func startContainer(t *testing.T, image, port string) string {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{port},
			WaitingFor:   wait.ForListeningPort(port),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("%s container not available: %v", image, err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, port)
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", host, mapped.Port())
}

func TestIntegration_Redis(t *testing.T) {
	addr := startContainer(t, "redis:7.2-alpine", "6379/tcp")
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "widgets/profile", "<profile/>", 0).Err())

	data, err := xlazy.Load(ctx, xsource.Redis(client, "widgets/profile"), xretry.NewPolicy(3, 100*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, "<profile/>", string(data))

	_, err = xsource.Redis(client, "widgets/none")(ctx)
	assert.ErrorIs(t, err, xsource.ErrNotFound)
}

func TestIntegration_Mongo(t *testing.T) {
	addr := startContainer(t, "mongo:7", "27017/tcp")
	client, err := mongo.Connect(options.Client().ApplyURI("mongodb://" + addr))
	require.NoError(t, err)
	defer func() { _ = client.Disconnect(context.Background()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	coll := client.Database("xlazy").Collection("widgets")
	_, err = coll.InsertOne(ctx, bson.D{{Key: "_id", Value: "profile"}, {Key: "content", Value: "<p/>"}})
	require.NoError(t, err)

	data, err := xsource.Mongo(coll, "profile", "content")(ctx)
	require.NoError(t, err)
	assert.Equal(t, "<p/>", string(data))

	_, err = xsource.Mongo(coll, "absent", "content")(ctx)
	assert.ErrorIs(t, err, xsource.ErrNotFound)
}
