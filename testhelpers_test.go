//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shareit-platform/service-booking/internal/application"
	itemDomain "github.com/shareit-platform/service-booking/internal/domain/item"
	"github.com/shareit-platform/service-booking/internal/events"
	"github.com/shareit-platform/service-booking/internal/repository"
	"github.com/shareit-platform/service-booking/pkg/config"
	"github.com/shareit-platform/service-booking/pkg/database"
	"github.com/shareit-platform/service-booking/pkg/kafka"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	Redis        *redis.Client
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds wired-up services on top of the containers.
type bookingStack struct {
	Items           itemDomain.ItemRepository
	Bookings        *application.BookingService
	ItemService     *application.ItemService
	Comments        *application.CommentService
	Requests        *application.RequestService
	CleanupProducer func()
}

// setupContainers starts PostgreSQL, Redis and Kafka testcontainers and applies the SQL migrations.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()
	logger, _ := zap.NewDevelopment()

	// Start PostgreSQL container with log-based wait strategy.
	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_shareit",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dbCfg := config.DatabaseConfig{
		Host:     pgHost,
		Port:     pgPort.Port(),
		User:     "test",
		Password: "test",
		DBName:   "test_shareit",
		SSLMode:  "disable",
	}

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Connect(dbCfg, logger)
		return err == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, database.RunMigrations(dbCfg.DatabaseURL(), "migrations", logger))

	// Start Redis container.
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start Redis container")

	redisHost, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	redisPort, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: net.JoinHostPort(redisHost, redisPort.Port())})
	require.Eventually(t, func() bool {
		return rdb.Ping(ctx).Err() == nil
	}, 15*time.Second, 500*time.Millisecond, "Redis not ready for connections")

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, events.TopicBookingEvents)

	cleanup := func() {
		_ = rdb.Close()
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		Redis:        rdb,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBookingStack wires the services the same way cmd/server does, with the Redis cache in front of items.
func setupBookingStack(t *testing.T, infra *testInfra) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookingRepo := repository.NewGormBookingRepository(infra.DB)
	commentRepo := repository.NewGormCommentRepository(infra.DB)
	requestRepo := repository.NewGormRequestRepository(infra.DB)
	itemRepo := repository.NewCachedItemRepository(
		repository.NewGormItemRepository(infra.DB), infra.Redis, time.Minute, logger)

	producer := kafka.NewProducer(infra.KafkaBrokers, logger)
	projector := application.NewAvailabilityProjector(bookingRepo, itemRepo)

	return &bookingStack{
		Items:           itemRepo,
		Bookings:        application.NewBookingService(bookingRepo, itemRepo, producer, application.SystemClock, logger),
		ItemService:     application.NewItemService(itemRepo, commentRepo, requestRepo, projector, application.SystemClock, logger),
		Comments:        application.NewCommentService(commentRepo, itemRepo, bookingRepo, application.SystemClock, logger),
		Requests:        application.NewRequestService(requestRepo, itemRepo, application.SystemClock, logger),
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedItem stores an available item owned by ownerID.
func seedItem(t *testing.T, items itemDomain.ItemRepository, ownerID uuid.UUID, name string) *itemDomain.Item {
	t.Helper()
	it, err := itemDomain.NewItem(ownerID, name, name+" for rent", true)
	require.NoError(t, err)
	require.NoError(t, items.Save(context.Background(), it))
	return it
}

// readHookItems runs afterRead once, between the database read of IDsOwnedBy and its return.
type readHookItems struct {
	itemDomain.ItemRepository
	afterRead func()
}

func (r *readHookItems) IDsOwnedBy(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := r.ItemRepository.IDsOwnedBy(ctx, ownerID)
	if hook := r.afterRead; hook != nil {
		r.afterRead = nil
		hook()
	}
	return ids, err
}

// collectEvents consumes booking.events until want events for subject have arrived.
func collectEvents(t *testing.T, brokers []string, subject string, want int, timeout time.Duration) []kafka.CloudEvent {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicBookingEvents, logger)
	defer func() { _ = consumer.Close() }()

	var got []kafka.CloudEvent
	_ = consumer.Consume(ctx, func(_ context.Context, evt kafka.CloudEvent) error {
		if evt.Subject == subject {
			got = append(got, evt)
			if len(got) == want {
				cancel()
			}
		}
		return nil
	})
	require.Len(t, got, want, "timed out waiting for events on %q", events.TopicBookingEvents)
	return got
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
