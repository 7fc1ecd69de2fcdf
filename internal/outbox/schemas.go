package outbox

import (
	"github.com/Maqingtian/campus-hub/internal/platform/events"
)

// Topics carried by the dispatcher.
const (
	TopicSignupEvents   = "signup_events"
	TopicActivityEvents = "activity_events"
)

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic         string
	SchemaSubject string
	Schema        string
}

var eventCatalog = map[string]EventMetadata{
	events.TypeSignupJoined: {
		Topic:         TopicSignupEvents,
		SchemaSubject: "signup_events-joined-value",
		Schema:        signupChangedSchema,
	},
	events.TypeSignupCanceled: {
		Topic:         TopicSignupEvents,
		SchemaSubject: "signup_events-canceled-value",
		Schema:        signupChangedSchema,
	},
	events.TypeActivityCreated: {
		Topic:         TopicActivityEvents,
		SchemaSubject: "activity_events-created-value",
		Schema:        activityCreatedSchema,
	},
	events.TypeActivityVisibilityChanged: {
		Topic:         TopicActivityEvents,
		SchemaSubject: "activity_events-visibility-value",
		Schema:        activityVisibilityChangedSchema,
	},
}

// LookupEvent returns routing metadata for an event type.
func LookupEvent(eventType string) (EventMetadata, bool) {
	meta, ok := eventCatalog[eventType]
	return meta, ok
}

const signupChangedSchema = `{
  "type": "object",
  "title": "SignupChanged",
  "properties": {
    "signup_id": {"type": "string"},
    "activity_id": {"type": "string"},
    "user_id": {"type": "string"},
    "status": {"type": "string", "enum": ["JOINED", "CANCELED"]},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["signup_id", "activity_id", "user_id", "status", "occurred_at"],
  "additionalProperties": false
}`

const activityCreatedSchema = `{
  "type": "object",
  "title": "ActivityCreated",
  "properties": {
    "activity_id": {"type": "string"},
    "activity_type": {"type": "string"},
    "title": {"type": "string"},
    "creator_id": {"type": "string"},
    "start_time": {"type": "string", "format": "date-time"},
    "end_time": {"type": ["string", "null"], "format": "date-time"},
    "capacity": {"type": ["integer", "null"]},
    "created_at": {"type": "string", "format": "date-time"}
  },
  "required": ["activity_id", "activity_type", "title", "start_time", "created_at"],
  "additionalProperties": false
}`

const activityVisibilityChangedSchema = `{
  "type": "object",
  "title": "ActivityVisibilityChanged",
  "properties": {
    "activity_id": {"type": "string"},
    "title": {"type": "string"},
    "creator_id": {"type": "string"},
    "hidden": {"type": "boolean"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["activity_id", "hidden", "occurred_at"],
  "additionalProperties": false
}`
