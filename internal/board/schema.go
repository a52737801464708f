package board

import jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

// settingsSchema describes the persisted blob. Loads that fail validation
// are not rejected outright; see salvageSettings.
const settingsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["boards"],
  "properties": {
    "lastActiveBoardId": {"type": "string"},
    "boards": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id": {"type": "string"},
          "name": {"type": "string"},
          "filters": {
            "type": "object",
            "properties": {
              "tags": {"type": "array", "items": {"type": "string"}},
              "excludeTags": {"type": "array", "items": {"type": "string"}},
              "folders": {"type": "array", "items": {"type": "string"}},
              "status": {"type": "array", "items": {"type": "string"}}
            }
          },
          "data": {
            "type": "object",
            "properties": {
              "layout": {
                "type": "object",
                "additionalProperties": {
                  "type": "object",
                  "required": ["x", "y"],
                  "properties": {
                    "x": {"type": "number"},
                    "y": {"type": "number"}
                  }
                }
              },
              "edges": {
                "type": "array",
                "items": {
                  "type": "object",
                  "required": ["source", "target"],
                  "properties": {
                    "id": {"type": "string"},
                    "source": {"type": "string"},
                    "target": {"type": "string"},
                    "animated": {"type": "boolean"}
                  }
                }
              },
              "nodeStatus": {
                "type": "object",
                "additionalProperties": {"type": "string"}
              },
              "textNodes": {
                "type": "array",
                "items": {
                  "type": "object",
                  "required": ["id", "text"],
                  "properties": {
                    "id": {"type": "string"},
                    "text": {"type": "string"},
                    "x": {"type": "number"},
                    "y": {"type": "number"}
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("settings.schema.json", settingsSchema)
