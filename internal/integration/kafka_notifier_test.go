//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/meteowatch/kindex-forecast/internal/adapter/kafka"
	"github.com/meteowatch/kindex-forecast/internal/adapter/meteoagent"
	"github.com/meteowatch/kindex-forecast/internal/config"
	"github.com/meteowatch/kindex-forecast/internal/coordinator"
	"github.com/meteowatch/kindex-forecast/internal/domain"
	"github.com/meteowatch/kindex-forecast/internal/observability"
)

const testTopic = "test-forecast-updates"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestNotifierRoundTrip runs a real update cycle against a stub widget server
// and verifies the published snapshot arrives on the Kafka topic intact.
func TestNotifierRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	// Stub widget serving today and tomorrow.
	today := time.Now().UTC()
	markup := fmt.Sprintf(
		`<div class="date_%s"><span class="value__num">4</span></div>`+
			`<div class="date_%s"><span class="value__num">6</span></div>`,
		today.Format("20060102"),
		today.AddDate(0, 0, 1).Format("20060102"),
	)
	widget := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(markup))
	}))
	t.Cleanup(widget.Close)

	cfg := &config.Config{
		KafkaBrokers: []string{broker},
		KafkaTopic:   testTopic,
	}

	fetcher := meteoagent.NewClient(widget.URL, 5*time.Second, discardLogger())
	coord := coordinator.New(fetcher, 2, discardLogger(), observability.NewMetricsForTesting())

	notifier := kafkaadapter.NewNotifier(cfg, discardLogger())
	t.Cleanup(func() { _ = notifier.Close() })

	events, unsubscribe := coord.Subscribe()
	t.Cleanup(unsubscribe)

	notifierCtx, notifierCancel := context.WithCancel(ctx)
	defer notifierCancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		notifier.Run(notifierCtx, events)
	}()

	_, err := coord.Refresh(ctx)
	require.NoError(t, err)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from update topic")

	assert.Equal(t, today.Format("2006-01-02"), string(msg.Key))

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(msg.Value, &snap))
	require.Len(t, snap.Readings, 2)
	assert.Equal(t, domain.Reading{Value: 4, Status: domain.StatusOK}, snap.Readings[0])
	assert.Equal(t, domain.Reading{Value: 6, Status: domain.StatusOK}, snap.Readings[1])

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "2", headers["days"])

	notifierCancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("notifier did not stop")
	}
}
