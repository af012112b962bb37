package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	ckafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"google.golang.org/protobuf/proto"

	"github.com/nakji-network/connector-go/internal/testproto"
)

// TestTransactionalPublishIntegration publishes a committed batch and reads
// it back with a read_committed consumer.
func TestTransactionalPublishIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	brokers := initializeKafka(ctx, t)
	topic := integrationTopic("committed")
	createTestTopic(ctx, t, brokers, topic.String())

	p, err := NewTransactionalProducer(Config{Brokers: brokers, TransactionalID: "nakji-it-committed-0.0.1-test"})
	require.NoError(t, err)
	defer func() { _ = p.Close(ctx) }()

	key := NewKey("ethereum", "Block")
	require.NoError(t, p.Publish(ctx,
		NewMessage(topic, key, testproto.NewBlock(1, "0x1")),
		NewMessage(topic, key, testproto.NewBlock(2, "0x2")),
	))

	msgs := consumeCommitted(t, brokers, topic.String(), 2)
	require.Len(t, msgs, 2)

	for i, msg := range msgs {
		assert.Equal(t, key.Bytes(), msg.Key)

		got := testproto.Block(testproto.EVMFile())
		require.NoError(t, proto.Unmarshal(msg.Value, got))
		assert.True(t, proto.Equal(testproto.NewBlock(uint64(i+1), fmt.Sprintf("0x%d", i+1)), got))

		require.NotEmpty(t, msg.Headers)
		assert.Equal(t, HeaderBatchID, msg.Headers[0].Key)
	}
	assert.Equal(t, msgs[0].Headers[0].Value, msgs[1].Headers[0].Value)
}

// TestAbortedBatchInvisibleIntegration checks that records of a failed
// publish never reach a read_committed consumer.
func TestAbortedBatchInvisibleIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	brokers := initializeKafka(ctx, t)
	topic := integrationTopic("aborted")
	createTestTopic(ctx, t, brokers, topic.String())

	p, err := NewTransactionalProducer(Config{Brokers: brokers, TransactionalID: "nakji-it-aborted-0.0.1-test"})
	require.NoError(t, err)
	defer func() { _ = p.Close(ctx) }()

	key := NewKey("ethereum", "Block")
	err = p.Publish(ctx,
		NewMessage(topic, key, testproto.NewBlock(1, "0x1")),
		NewMessage(topic, key, nil),
	)
	require.ErrorIs(t, err, ErrNilPayload)

	require.NoError(t, p.Publish(ctx, NewMessage(topic, key, testproto.NewBlock(2, "0x2"))))

	msgs := consumeCommitted(t, brokers, topic.String(), 1)
	require.Len(t, msgs, 1)

	got := testproto.Block(testproto.EVMFile())
	require.NoError(t, proto.Unmarshal(msgs[0].Value, got))
	assert.True(t, proto.Equal(testproto.NewBlock(2, "0x2"), got))
}

// TestFencedProducerIntegration starts a second producer with the same
// transactional id and expects the first one to shut down.
func TestFencedProducerIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	brokers := initializeKafka(ctx, t)
	topic := integrationTopic("fenced")
	createTestTopic(ctx, t, brokers, topic.String())

	cfg := Config{Brokers: brokers, TransactionalID: "nakji-it-fenced-0.0.1-test"}
	key := NewKey("ethereum", "Block")

	first, err := NewTransactionalProducer(cfg)
	require.NoError(t, err)
	defer func() { _ = first.Close(ctx) }()
	require.NoError(t, first.Publish(ctx, NewMessage(topic, key, testproto.NewBlock(1, "0x1"))))

	second, err := NewTransactionalProducer(cfg)
	require.NoError(t, err)
	defer func() { _ = second.Close(ctx) }()
	require.NoError(t, second.Publish(ctx, NewMessage(topic, key, testproto.NewBlock(2, "0x2"))))

	err = first.Publish(ctx, NewMessage(topic, key, testproto.NewBlock(3, "0x3")))
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.ErrorIs(t, first.Publish(ctx, NewMessage(topic, key, testproto.NewBlock(4, "0x4"))), ErrProducerClosed)
}

func integrationTopic(connector string) Topic {
	return NewTopic(EnvTest, MsgTypeFact, "nakji", connector, *semver.MustParse("0.0.1"), "evm_Block")
}

// consumeCommitted reads up to want records from the start of topic,
// skipping records of aborted transactions.
func consumeCommitted(t *testing.T, brokers []string, topic string, want int) []*ckafka.Message {
	t.Helper()

	c, err := ckafka.NewConsumer(&ckafka.ConfigMap{
		"bootstrap.servers":  strings.Join(brokers, ","),
		"group.id":           "nakji-it-" + topic,
		"auto.offset.reset":  "earliest",
		"isolation.level":    "read_committed",
		"enable.auto.commit": false,
	})
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.SubscribeTopics([]string{topic}, nil))

	var out []*ckafka.Message
	deadline := time.Now().Add(30 * time.Second)
	for len(out) < want && time.Now().Before(deadline) {
		msg, err := c.ReadMessage(time.Second)
		if err != nil {
			var kerr ckafka.Error
			if errors.As(err, &kerr) && kerr.Code() == ckafka.ErrTimedOut {
				continue
			}
			require.NoError(t, err)
		}
		out = append(out, msg)
	}
	return out
}

func initializeKafka(ctx context.Context, t *testing.T) []string {
	t.Helper()

	hostPort, err := getFreePort()
	require.NoError(t, err)

	containerInstance, err := createKafkaContainer(ctx, hostPort)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := containerInstance.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dialer := &net.Dialer{Timeout: 2 * time.Second}
	require.Eventually(t, func() bool {
		conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort("localhost", hostPort))
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 60*time.Second, 500*time.Millisecond, "Kafka port not ready")

	return []string{net.JoinHostPort("localhost", hostPort)}
}

func createTestTopic(ctx context.Context, t *testing.T, brokers []string, topic string) {
	t.Helper()

	admin, err := ckafka.NewAdminClient(&ckafka.ConfigMap{"bootstrap.servers": strings.Join(brokers, ",")})
	require.NoError(t, err)
	defer admin.Close()

	createCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	results, err := admin.CreateTopics(createCtx, []ckafka.TopicSpecification{{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}})
	require.NoError(t, err)
	for _, r := range results {
		if r.Error.Code() != ckafka.ErrNoError && r.Error.Code() != ckafka.ErrTopicAlreadyExists {
			t.Fatalf("create topic %s: %v", r.Topic, r.Error)
		}
	}
}

func createKafkaContainer(ctx context.Context, hostPort string) (testcontainers.Container, error) {
	portBindings := nat.PortMap{
		"9092/tcp": []nat.PortBinding{{HostPort: hostPort}},
	}

	req := testcontainers.ContainerRequest{
		Image:        "confluentinc/cp-kafka:7.5.0",
		ExposedPorts: []string{"9092/tcp"},
		Env: map[string]string{
			"KAFKA_LISTENER_SECURITY_PROTOCOL_MAP":           "PLAINTEXT:PLAINTEXT,PLAINTEXT_HOST:PLAINTEXT,CONTROLLER:PLAINTEXT",
			"KAFKA_ADVERTISED_LISTENERS":                     fmt.Sprintf("PLAINTEXT://localhost:29092,PLAINTEXT_HOST://localhost:%s", hostPort),
			"KAFKA_OFFSETS_TOPIC_REPLICATION_FACTOR":         "1",
			"KAFKA_TRANSACTION_STATE_LOG_MIN_ISR":            "1",
			"KAFKA_TRANSACTION_STATE_LOG_REPLICATION_FACTOR": "1",
			"KAFKA_PROCESS_ROLES":                            "broker,controller",
			"KAFKA_NODE_ID":                                  "1",
			"KAFKA_CONTROLLER_QUORUM_VOTERS":                 "1@localhost:29093",
			"KAFKA_LISTENERS":                                "PLAINTEXT://0.0.0.0:29092,PLAINTEXT_HOST://0.0.0.0:9092,CONTROLLER://0.0.0.0:29093",
			"KAFKA_INTER_BROKER_LISTENER_NAME":               "PLAINTEXT",
			"KAFKA_CONTROLLER_LISTENER_NAMES":                "CONTROLLER",
			"KAFKA_LOG_DIRS":                                 "/tmp/kraft-combined-logs",
			"CLUSTER_ID":                                     "MkU3OEVBNTcwNTJENDM2Qk",
		},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = portBindings
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("9092/tcp").WithStartupTimeout(60*time.Second),
			wait.ForLog("Kafka Server started").WithStartupTimeout(60*time.Second),
		),
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err == nil {
			return c, nil
		}
		lastErr = err
		if strings.Contains(err.Error(), "docker.sock") {
			time.Sleep(time.Duration(attempt+1) * time.Second)
			continue
		}
		break
	}

	return nil, fmt.Errorf("failed to start Kafka container after 3 attempts: %w", lastErr)
}

func getFreePort() (string, error) {
	lc := &net.ListenConfig{}
	l, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer func() { _ = l.Close() }()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port), nil
}
