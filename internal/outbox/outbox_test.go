package outbox

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/Maqingtian/campus-hub/internal/domain"
	"github.com/Maqingtian/campus-hub/internal/platform/events"
)

func TestEncodeWireFormat(t *testing.T) {
	payload := []byte(`{"signup_id":"s-1"}`)
	frame := encodeWireFormat(513, payload)

	require.Len(t, frame, 5+len(payload))
	require.Equal(t, byte(0), frame[0])
	require.Equal(t, uint32(513), binary.BigEndian.Uint32(frame[1:5]))
	require.Equal(t, payload, frame[5:])
}

func TestEventCatalogRoutesEveryEventType(t *testing.T) {
	cases := map[string]string{
		events.TypeSignupJoined:              TopicSignupEvents,
		events.TypeSignupCanceled:            TopicSignupEvents,
		events.TypeActivityCreated:           TopicActivityEvents,
		events.TypeActivityVisibilityChanged: TopicActivityEvents,
	}
	for eventType, topic := range cases {
		meta, ok := LookupEvent(eventType)
		require.True(t, ok, eventType)
		require.Equal(t, topic, meta.Topic)
		require.NotEmpty(t, meta.SchemaSubject)
		require.True(t, json.Valid([]byte(meta.Schema)), "schema for %s must be valid JSON", eventType)
	}

	_, ok := LookupEvent("signup.unknown")
	require.False(t, ok)
}

func TestPublisherInsertsOutboxRow(t *testing.T) {
	db := &recordingExecer{}
	publisher := NewPublisher(db)
	occurred := time.Date(2025, time.June, 2, 15, 0, 0, 0, time.UTC)

	event := domain.SignupChangedEvent(domain.Signup{
		ID:         "s-1",
		ActivityID: "act-1",
		UserID:     "user-1",
		Status:     domain.SignupStatusJoined,
		UpdatedAt:  occurred,
	})
	require.NoError(t, publisher.Publish(context.Background(), event))

	require.Len(t, db.calls, 1)
	args := db.calls[0]
	require.Equal(t, "signup", args[0])
	require.Equal(t, "s-1", args[1])
	require.Equal(t, events.TypeSignupJoined, args[2])
	require.Equal(t, TopicSignupEvents, args[3])
	require.Equal(t, "act-1", args[5], "signup events partition by activity")

	var payload events.SignupChanged
	require.NoError(t, json.Unmarshal(args[6].([]byte), &payload))
	require.Equal(t, "JOINED", payload.Status)
	require.Equal(t, "user-1", payload.UserID)

	require.Equal(t, "s-1:signup.joined:"+strconv.FormatInt(occurred.UnixNano(), 10), args[7])
}

func TestPublisherRejectsUnknownEvent(t *testing.T) {
	db := &recordingExecer{}
	err := NewPublisher(db).Publish(context.Background(), domain.Event{Type: "nope"})
	require.Error(t, err)
	require.Empty(t, db.calls)
}

func TestPublisherPropagatesStorageErrors(t *testing.T) {
	db := &recordingExecer{err: errors.New("connection refused")}
	event := domain.ActivityCreatedEvent(domain.Activity{ID: "act-1", Title: "Chess"})
	require.ErrorContains(t, NewPublisher(db).Publish(context.Background(), event), "connection refused")
}

func TestBackoffDelayIsCappedAtOneHour(t *testing.T) {
	manager := NewDLQManager(nil, 0, 0)
	require.Equal(t, time.Minute, manager.backoffDelay(1))
	require.Equal(t, 2*time.Minute, manager.backoffDelay(2))
	require.Equal(t, 16*time.Minute, manager.backoffDelay(5))
	require.Equal(t, time.Hour, manager.backoffDelay(7))
	require.Equal(t, time.Hour, manager.backoffDelay(64))
}

func TestDLQOutcomeMetrics(t *testing.T) {
	entry := dlqEntry{Topic: TopicActivityEvents, EventType: "activity.created", RetryCount: 2}
	retried := dlqEntriesCounter.WithLabelValues(TopicActivityEvents, "activity.created", string(dlqOutcomeRetried))
	requeued := dlqEntriesCounter.WithLabelValues(TopicActivityEvents, "activity.created", string(dlqOutcomeRequeued))
	beforeRetried, beforeRequeued := testutil.ToFloat64(retried), testutil.ToFloat64(requeued)

	recordDLQOutcome(entry, dlqOutcomeRetried)
	recordDLQOutcome(entry, dlqOutcomeRetried)

	require.InDelta(t, beforeRetried+2, testutil.ToFloat64(retried), 0.0001)
	require.InDelta(t, beforeRequeued, testutil.ToFloat64(requeued), 0.0001, "outcomes are counted separately")

	setDLQBacklog(4, 1)
	require.Equal(t, float64(4), testutil.ToFloat64(dlqBacklogGauge.WithLabelValues("pending")))
	require.Equal(t, float64(1), testutil.ToFloat64(dlqBacklogGauge.WithLabelValues("quarantined")))
}

func TestSchemaRegistryRegistersMissingSubject(t *testing.T) {
	var registered bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPost && r.URL.Path == "/subjects/signup_events-joined-value/versions":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "JSON", body["schemaType"])
			registered = true
			_, _ = w.Write([]byte(`{"id":17}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	client := NewSchemaRegistryClient(srv.URL)
	id, err := client.EnsureSchema(context.Background(), "signup_events-joined-value", signupChangedSchema)
	require.NoError(t, err)
	require.Equal(t, 17, id)
	require.True(t, registered)
}

func TestSchemaRegistryReusesLatestVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"id":5}`))
	}))
	defer srv.Close()

	id, err := NewSchemaRegistryClient(srv.URL).EnsureSchema(context.Background(), "activity_events-created-value", activityCreatedSchema)
	require.NoError(t, err)
	require.Equal(t, 5, id)
}

type recordingExecer struct {
	err   error
	calls [][]any
}

func (r *recordingExecer) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	if r.err != nil {
		return pgconn.CommandTag{}, r.err
	}
	r.calls = append(r.calls, args)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}
