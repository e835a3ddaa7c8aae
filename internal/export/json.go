package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/user/tripagent/internal/llmtypes"
	"github.com/user/tripagent/internal/session"
	"github.com/user/tripagent/internal/store"
	"github.com/user/tripagent/internal/validation"
)

// GeneratorName identifies exported documents
const GeneratorName = "tripagent"

// JSONDocument represents the complete JSON output structure
type JSONDocument struct {
	Metadata  Metadata                     `json:"metadata"`
	Trip      session.Context              `json:"trip"`
	Answer    string                       `json:"answer,omitempty"`
	Itinerary validation.Itinerary         `json:"itinerary"`
	Warnings  []validation.ValidationError `json:"warnings"`
	Lookups   []Lookup                     `json:"lookups"`
	Messages  []llmtypes.Message           `json:"messages,omitempty"`
}

// Metadata contains document metadata
type Metadata struct {
	Title        string    `json:"title"`
	SessionKey   string    `json:"session_key"`
	GeneratedAt  time.Time `json:"generated_at"`
	Generator    Generator `json:"generator"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// Generator information
type Generator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Lookup pairs one tool call with the text it produced
type Lookup struct {
	ID        string                 `json:"id"`
	Tool      string                 `json:"tool"`
	Arguments map[string]interface{} `json:"args,omitempty"`
	Result    string                 `json:"result"`
}

// JSONExporter converts sessions to structured JSON documents
type JSONExporter struct {
	validator       *validation.ItineraryValidator
	version         string
	includeMessages bool
	now             func() time.Time
}

// NewJSONExporter creates a JSON exporter stamping documents with version
func NewJSONExporter(version string) *JSONExporter {
	return &JSONExporter{
		validator: validation.NewItineraryValidator(),
		version:   version,
		now:       time.Now,
	}
}

// WithMessages makes exported documents carry the raw conversation
func (e *JSONExporter) WithMessages(include bool) *JSONExporter {
	e.includeMessages = include
	return e
}

// Build assembles the document for rec
func (e *JSONExporter) Build(rec *store.Record) JSONDocument {
	answer := FinalAnswer(rec)

	doc := JSONDocument{
		Metadata: Metadata{
			Title:        Title(rec),
			SessionKey:   rec.Key,
			GeneratedAt:  e.now().UTC(),
			Generator:    Generator{Name: GeneratorName, Version: e.version},
			CreatedAt:    rec.CreatedAt,
			UpdatedAt:    rec.UpdatedAt,
			MessageCount: len(rec.Messages),
		},
		Trip:      rec.Session,
		Answer:    answer,
		Itinerary: validation.ParseItinerary([]byte(answer)),
		Warnings:  []validation.ValidationError{},
		Lookups:   collectLookups(rec.Messages),
	}
	if doc.Itinerary.Days == nil {
		doc.Itinerary.Days = []validation.Day{}
	}
	if answer != "" {
		doc.Warnings = e.validator.Check(answer).Errors
	}
	if e.includeMessages {
		doc.Messages = rec.Messages
	}
	return doc
}

// Marshal renders rec as indented JSON
func (e *JSONExporter) Marshal(rec *store.Record) ([]byte, error) {
	data, err := json.MarshalIndent(e.Build(rec), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return data, nil
}

// ExportToJSON writes the session document to outputPath
func (e *JSONExporter) ExportToJSON(rec *store.Record, outputPath string) error {
	data, err := e.Marshal(rec)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// collectLookups pairs each call with the tool messages that follow its
// assistant turn; ids are only unique within one turn.
func collectLookups(msgs []llmtypes.Message) []Lookup {
	lookups := []Lookup{}
	for i, m := range msgs {
		if !m.HasToolCalls() {
			continue
		}
		results := make(map[string]string, len(m.ToolCalls))
		for j := i + 1; j < len(msgs) && msgs[j].Role == llmtypes.RoleTool; j++ {
			results[msgs[j].ToolID] = msgs[j].Content
		}
		for _, call := range m.ToolCalls {
			lookups = append(lookups, Lookup{
				ID:        call.ID,
				Tool:      call.Name,
				Arguments: call.Arguments,
				Result:    results[call.ID],
			})
		}
	}
	return lookups
}
