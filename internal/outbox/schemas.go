package outbox

const habitCreatedSchema = `{
  "type": "object",
  "title": "HabitCreated",
  "properties": {
    "habit_id": {"type": "string"},
    "user_id": {"type": "string"},
    "name": {"type": "string"},
    "frequency": {"type": "string"},
    "days_of_week": {"type": "array", "items": {"type": "integer", "minimum": 0, "maximum": 6}},
    "reminder_time": {"type": "string"},
    "created_at": {"type": "string", "format": "date-time"}
  },
  "required": ["habit_id", "user_id", "name", "frequency", "created_at"],
  "additionalProperties": false
}`

const habitUpdatedSchema = `{
  "type": "object",
  "title": "HabitUpdated",
  "properties": {
    "habit_id": {"type": "string"},
    "user_id": {"type": "string"},
    "name": {"type": "string"},
    "frequency": {"type": "string"},
    "days_of_week": {"type": "array", "items": {"type": "integer", "minimum": 0, "maximum": 6}},
    "reminder_time": {"type": "string"},
    "updated_at": {"type": "string", "format": "date-time"}
  },
  "required": ["habit_id", "user_id", "name", "frequency", "updated_at"],
  "additionalProperties": false
}`

const habitDeletedSchema = `{
  "type": "object",
  "title": "HabitDeleted",
  "properties": {
    "habit_id": {"type": "string"},
    "user_id": {"type": "string"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["habit_id", "user_id", "occurred_at"],
  "additionalProperties": false
}`

const completionToggledSchema = `{
  "type": "object",
  "title": "CompletionToggled",
  "properties": {
    "habit_id": {"type": "string"},
    "user_id": {"type": "string"},
    "date": {"type": "string", "format": "date"},
    "completed": {"type": "boolean"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["habit_id", "user_id", "date", "completed", "occurred_at"],
  "additionalProperties": false
}`
