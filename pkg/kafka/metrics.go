package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConsumerMessagesReceived counts total messages fetched from Kafka (before processing).
	ConsumerMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_consumer_messages_received_total",
			Help: "Total number of Kafka messages received (fetched from broker)",
		},
		[]string{"topic", "consumer_group"},
	)

	// ConsumerMessagesProcessed counts the total number of successfully processed messages.
	ConsumerMessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_consumer_messages_processed_total",
			Help: "Total number of successfully processed Kafka messages",
		},
		[]string{"topic", "consumer_group"},
	)

	// ConsumerMessagesFailed counts the total number of messages that exhausted retries.
	ConsumerMessagesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_consumer_messages_failed_total",
			Help: "Total number of Kafka messages that failed all retries (sent to DLQ or dropped)",
		},
		[]string{"topic", "consumer_group"},
	)

	// ConsumerMessagesDuplicate counts messages skipped by the idempotency guard.
	ConsumerMessagesDuplicate = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_consumer_messages_duplicate_total",
			Help: "Total number of duplicate Kafka messages skipped by idempotency guard",
		},
		[]string{"topic", "consumer_group"},
	)

	// ConsumerProcessingDuration observes the duration of message handler execution.
	ConsumerProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_consumer_processing_duration_seconds",
			Help:    "Duration of Kafka message processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"topic", "consumer_group"},
	)
)
