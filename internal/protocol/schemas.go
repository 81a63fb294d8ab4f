package protocol

// JSON schemas for the observer feed. Kept next to the message structs so a
// field added to one side shows up as a test failure on the other.

const SubscribeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type", "protocol_version"],
  "properties": {
    "type": {"const": "SUBSCRIBE"},
    "protocol_version": {"type": "string"}
  }
}`

const WelcomeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type", "protocol_version", "grid_width", "grid_height", "turn"],
  "properties": {
    "type": {"const": "WELCOME"},
    "protocol_version": {"type": "string"},
    "grid_width": {"type": "integer", "minimum": 1},
    "grid_height": {"type": "integer", "minimum": 1},
    "seed": {"type": "integer"},
    "turn": {"type": "integer", "minimum": 0}
  }
}`

const TurnSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type", "protocol_version", "turn", "agents", "stats"],
  "properties": {
    "type": {"const": "TURN"},
    "protocol_version": {"type": "string"},
    "turn": {"type": "integer", "minimum": 0},
    "agents": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["kind", "x", "y"],
        "properties": {
          "kind": {"enum": ["spacecraft", "rover", "alien", "rock"]},
          "id": {"type": "integer", "minimum": 1},
          "x": {"type": "integer"},
          "y": {"type": "integer"},
          "battery": {"type": "integer", "minimum": 0},
          "energy": {"type": "integer", "minimum": 0, "maximum": 100},
          "damaged": {"type": "boolean"},
          "hibernating": {"type": "boolean"},
          "carrying": {"type": "boolean"},
          "request_charging": {"type": "boolean"},
          "picked_up": {"type": "boolean"}
        }
      }
    },
    "stats": {
      "type": "object",
      "required": ["turn", "rovers", "aliens"],
      "properties": {
        "turn": {"type": "integer", "minimum": 0},
        "rovers": {"type": "integer", "minimum": 0},
        "damaged_rovers": {"type": "integer", "minimum": 0},
        "mean_rover_battery": {"type": "integer", "minimum": 0},
        "aliens": {"type": "integer", "minimum": 0},
        "hibernating_aliens": {"type": "integer", "minimum": 0},
        "rocks_on_grid": {"type": "integer", "minimum": 0},
        "rocks_retrieved": {"type": "integer", "minimum": 0}
      }
    }
  }
}`
