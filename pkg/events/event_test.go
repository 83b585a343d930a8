package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentSettled struct {
	BaseEvent
	Amount string `json:"amount"`
}

func TestNewBaseEvent(t *testing.T) {
	before := time.Now().UTC()
	event := NewBaseEvent("settlement.payment.succeeded", "sp-123", "ScheduledPayment", "company-1")
	after := time.Now().UTC()

	assert.NotEmpty(t, event.EventID())
	assert.Equal(t, "settlement.payment.succeeded", event.EventType())
	assert.Equal(t, "sp-123", event.AggregateID())
	assert.Equal(t, "ScheduledPayment", event.AggregateType())
	assert.Equal(t, "company-1", event.TenantID())
	assert.False(t, event.OccurredAt().Before(before))
	assert.False(t, event.OccurredAt().After(after))
}

func TestBaseEventImplementsDomainEvent(t *testing.T) {
	var _ DomainEvent = BaseEvent{}
	var _ DomainEvent = paymentSettled{}
}

func TestNewOutboxEntry(t *testing.T) {
	event := paymentSettled{
		BaseEvent: NewBaseEvent("settlement.payment.succeeded", "sp-789", "ScheduledPayment", "company-2"),
		Amount:    "300.00",
	}

	entry, err := NewOutboxEntry(event)
	require.NoError(t, err)

	assert.Equal(t, event.EventID(), entry.ID)
	assert.Equal(t, "sp-789", entry.AggregateID)
	assert.Equal(t, "ScheduledPayment", entry.AggregateType)
	assert.Equal(t, "settlement.payment.succeeded", entry.EventType)
	assert.Equal(t, "company-2", entry.TenantID)
	assert.Equal(t, event.OccurredAt(), entry.CreatedAt)
	assert.Nil(t, entry.PublishedAt)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(entry.Payload, &parsed))
	assert.Equal(t, "300.00", parsed["amount"])
	assert.Equal(t, "sp-789", parsed["aggregate_id"])
	assert.Equal(t, "company-2", parsed["tenant_id"])
}

func TestNewOutboxEntries(t *testing.T) {
	batch := []DomainEvent{
		NewBaseEvent("a", "agg", "Consumer", "t"),
		NewBaseEvent("b", "agg", "Consumer", "t"),
	}

	entries, err := NewOutboxEntries(batch)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].EventType)
	assert.Equal(t, "b", entries[1].EventType)
}

func TestEventCollectorRecord(t *testing.T) {
	collector := &EventCollector{}
	collector.Record(NewBaseEvent("Event1", "agg", "Consumer", ""))
	collector.Record(NewBaseEvent("Event2", "agg", "Consumer", ""))

	recorded := collector.Events()
	require.Len(t, recorded, 2)
	assert.Equal(t, "Event1", recorded[0].EventType())
	assert.Equal(t, "Event2", recorded[1].EventType())
	assert.Len(t, collector.Events(), 2, "Events must not clear the collector")
}

func TestEventCollectorClearEvents(t *testing.T) {
	collector := &EventCollector{}
	assert.Nil(t, collector.ClearEvents())

	collector.Record(NewBaseEvent("Event1", "agg", "Consumer", ""))
	cleared := collector.ClearEvents()

	assert.Len(t, cleared, 1)
	assert.Empty(t, collector.Events())
}
