package voiceai

import "fmt"

// AssistantConfig is the per-call assistant payload returned to the platform
// on an inbound call. The platform uses it to run the conversation and posts
// lifecycle webhooks (with our metadata echoed back) to ServerURL.
type AssistantConfig struct {
	Model        string `json:"model"`
	Voice        string `json:"voice"`
	FirstMessage string `json:"first_message"`

	// AnalysisSchema tells the platform which structured fields to extract
	// from the transcript at end of call.
	AnalysisSchema map[string]any `json:"analysis_schema"`

	ServerURL string `json:"server_url"`

	Metadata EventMetadata `json:"metadata"`
}

// AssistantBuilder holds the static parts of the assistant payload.
type AssistantBuilder struct {
	Model     string
	Voice     string
	ServerURL string
}

const (
	defaultModel = "gpt-4o"
	defaultVoice = "alloy"
)

func NewAssistantBuilder(serverURL string) AssistantBuilder {
	return AssistantBuilder{
		Model:     defaultModel,
		Voice:     defaultVoice,
		ServerURL: serverURL,
	}
}

// Build assembles the assistant payload for one call. Metadata carries the
// call and workshop ids so webhook deliveries can be tied back to our rows.
func (b AssistantBuilder) Build(workshopName, callID, workshopID string) AssistantConfig {
	return AssistantConfig{
		Model:        b.Model,
		Voice:        b.Voice,
		FirstMessage: fmt.Sprintf("Thank you for calling %s. How can I help you today?", workshopName),
		AnalysisSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"customer_name":     map[string]any{"type": "string"},
				"customer_phone":    map[string]any{"type": "string"},
				"customer_email":    map[string]any{"type": "string"},
				"vehicle_make":      map[string]any{"type": "string"},
				"vehicle_model":     map[string]any{"type": "string"},
				"vehicle_year":      map[string]any{"type": "string"},
				"issue_summary":     map[string]any{"type": "string"},
				"issue_category":    map[string]any{"type": "string"},
				"urgency":           map[string]any{"type": "string", "enum": []string{"low", "normal", "high", "emergency"}},
				"preferred_date":    map[string]any{"type": "string"},
				"preferred_time":    map[string]any{"type": "string"},
				"booking_confirmed": map[string]any{"type": "boolean"},
			},
		},
		ServerURL: b.ServerURL,
		Metadata: EventMetadata{
			CallID:     callID,
			WorkshopID: workshopID,
		},
	}
}
