package schema

import (
	"encoding/json"
	"testing"
)

var testSchema = []byte(`{
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string"},
    "priority": {"type": "integer", "minimum": 1}
  }
}`)

func TestValidateSchemaAccepts(t *testing.T) {
	doc := map[string]any{"name": "wf", "priority": 3}
	if err := ValidateSchema("workflow", testSchema, doc); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestValidateSchemaRejects(t *testing.T) {
	doc := map[string]any{"priority": 0}
	if err := ValidateSchema("workflow", testSchema, doc); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidateSchemaRawJSON(t *testing.T) {
	raw := json.RawMessage(`{"name": "wf"}`)
	if err := ValidateSchema("workflow", testSchema, raw); err != nil {
		t.Fatalf("raw json payload: %v", err)
	}
	if err := ValidateSchema("workflow", testSchema, []byte(`{`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestCompileBadSchema(t *testing.T) {
	if _, err := Compile("bad", nil); err == nil {
		t.Fatalf("expected empty schema error")
	}
	if _, err := Compile("bad", []byte(`{"type": 12}`)); err == nil {
		t.Fatalf("expected compile error")
	}
}
