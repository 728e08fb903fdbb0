package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/medflow/payroll-backend/pkg/config"
	"github.com/medflow/payroll-backend/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconnect_AfterClose(t *testing.T) {
	r := &RabbitMQ{config: &config.RabbitMQConfig{MaxRetries: 3}, logger: logger.Nop(), closed: true}

	err := r.Reconnect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permanently closed")
}

func TestReconnect_ContextCancelled(t *testing.T) {
	r := &RabbitMQ{config: &config.RabbitMQConfig{MaxRetries: 3}, logger: logger.Nop()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, r.Reconnect(ctx), context.Canceled)
}

func TestConsumer_StopsWhenReconnectFails(t *testing.T) {
	rmq := &RabbitMQ{config: &config.RabbitMQConfig{MaxRetries: 3}, logger: logger.Nop(), closed: true}
	c := newConsumer(rmq, "payroll-service.run-requests", logger.Nop())

	msgs := make(chan amqp.Delivery)
	close(msgs)

	done := make(chan struct{})
	go func() {
		c.run(context.Background(), msgs)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer kept running after the broker connection was lost for good")
	}
}
