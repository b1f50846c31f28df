package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed event.schema.json
var eventSchemaJSON string

// EventPayload is a manually submitted raw event, schema-validated before it
// enters the same ingestion path as fetched events.
type EventPayload struct {
	PayloadVersion string         `json:"payload_version"`
	Source         string         `json:"source"`
	ExternalID     string         `json:"external_id"`
	Title          string         `json:"title"`
	URL            *string        `json:"url,omitempty"`
	Body           *string        `json:"body,omitempty"`
	Metrics        map[string]int `json:"metrics,omitempty"`
	PublishedAt    *string        `json:"published_at,omitempty"`
	Language       *string        `json:"language,omitempty"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

func ValidateEventPayload(payload json.RawMessage) (*EventPayload, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize payload JSON: %w", err)
	}

	var event EventPayload
	if err := json.Unmarshal(normalized, &event); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := validateSemantics(&event); err != nil {
		return nil, err
	}

	return &event, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource("event.schema.json", strings.NewReader(eventSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("event.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

func validateSemantics(event *EventPayload) error {
	if event == nil {
		return fmt.Errorf("payload is nil")
	}

	if strings.TrimSpace(event.Source) == "" {
		return fmt.Errorf("source must not be empty")
	}
	if strings.TrimSpace(event.ExternalID) == "" {
		return fmt.Errorf("external_id must not be empty")
	}
	if strings.TrimSpace(event.Title) == "" {
		return fmt.Errorf("title must not be empty")
	}
	if strings.TrimSpace(event.PayloadVersion) != "v1" {
		return fmt.Errorf("payload_version must be v1")
	}

	if event.URL != nil {
		trimmed := strings.TrimSpace(*event.URL)
		if trimmed == "" {
			return fmt.Errorf("url must not be empty")
		}
		if _, err := url.ParseRequestURI(trimmed); err != nil {
			return fmt.Errorf("url is not a valid URI: %w", err)
		}
	}
	if event.PublishedAt != nil {
		if _, err := time.Parse(time.RFC3339, strings.TrimSpace(*event.PublishedAt)); err != nil {
			return fmt.Errorf("published_at must be RFC3339: %w", err)
		}
	}

	return nil
}
