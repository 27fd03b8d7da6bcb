package event

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgkafka "github.com/softmaker-io/spree-searchkick/pkg/kafka"
	"github.com/softmaker-io/spree-searchkick/pkg/logger"
)

type recordingMutator struct {
	ids []string
}

func (m *recordingMutator) OnMutate(id string) { m.ids = append(m.ids, id) }

func newEvent(t *testing.T, eventType string, data any) *pkgkafka.Event {
	t.Helper()
	event, err := pkgkafka.NewEvent(eventType, "", "product", "catalog", data)
	require.NoError(t, err)
	return event
}

func TestHandle_AllMutationEventsNotify(t *testing.T) {
	for _, eventType := range Topics() {
		t.Run(eventType, func(t *testing.T) {
			mutator := &recordingMutator{}
			c := NewConsumer(mutator, logger.New("event-test", "error"))

			event := newEvent(t, eventType, ProductEventData{ID: "prod-1"})
			require.NoError(t, c.Handle(context.Background(), event))

			assert.Equal(t, []string{"prod-1"}, mutator.ids)
		})
	}
}

func TestHandle_FallsBackToAggregateID(t *testing.T) {
	mutator := &recordingMutator{}
	c := NewConsumer(mutator, logger.New("event-test", "error"))

	event := newEvent(t, TopicProductDeleted, map[string]any{})
	event.AggregateID = "prod-9"
	require.NoError(t, c.Handle(context.Background(), event))

	assert.Equal(t, []string{"prod-9"}, mutator.ids)
}

func TestHandle_UnknownEventTypeIgnored(t *testing.T) {
	mutator := &recordingMutator{}
	c := NewConsumer(mutator, logger.New("event-test", "error"))

	event := newEvent(t, "catalog.order.completed", ProductEventData{ID: "prod-1"})
	require.NoError(t, c.Handle(context.Background(), event))

	assert.Empty(t, mutator.ids)
}

func TestHandle_MalformedPayload(t *testing.T) {
	mutator := &recordingMutator{}
	c := NewConsumer(mutator, logger.New("event-test", "error"))

	event := newEvent(t, TopicProductUpdated, nil)
	event.Data = json.RawMessage(`{"id": 42`)
	require.Error(t, c.Handle(context.Background(), event))

	assert.Empty(t, mutator.ids)
}

func TestHandle_MissingIDSkipped(t *testing.T) {
	mutator := &recordingMutator{}
	c := NewConsumer(mutator, logger.New("event-test", "error"))

	event := newEvent(t, TopicProductCreated, map[string]any{})
	require.NoError(t, c.Handle(context.Background(), event))

	assert.Empty(t, mutator.ids)
}
