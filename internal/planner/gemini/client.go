// Package gemini implements the planning collaborator using Google's
// Gemini models with structured JSON output.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/tripsense/tripsense/internal/planner"
	"github.com/tripsense/tripsense/internal/trip"
)

const (
	// ProviderName identifies this planning provider.
	ProviderName = "gemini"

	// DefaultModel balances quality and latency for planning calls.
	DefaultModel = "gemini-2.5-flash"

	// maxLegs caps the legs we ask the model for.
	maxLegs = 6
)

const plannerSystemPrompt = `You are a precise urban travel planner. Given preferences and a start and
end location, suggest exact addresses and names of nearby attractions and places to visit, accounting
for travel time between them.
Constraints:
- Obey the allowed transport modes only. Keep travel time realistic; prefer subway when walking would
  take an unreasonable time.
- If wheelchair accessibility is requested, prefer step-free routes, ramps, and elevators; avoid
  stairs; note any potential barriers; be considerate on walking times.
- Stay within the user's time window and include buffer time between legs.
- Give high preference to the user's activity preferences and never violate dietary restrictions.
- Be conservative on timing but maximize the hours for the best experience.
- Name specific restaurants with approximate cost per person. Do not suggest vague places.
- Use modes: subway, walk, or activity when the user spends time at one location.
- Fill choiceReasoning with short notes on why each choice was made, highlighting any constraint that
  might be violated.
Output must be a single JSON object with this shape:
{"summary": string, "totalEstDurationMin": int|null, "totalEstCostUSD": number|null,
 "assumptions": [string], "legs": [{"sequence": int, "mode": string, "departTime": string|null,
 "arriveTime": string|null, "fromLocation": string, "toLocation": string, "estDurationMin": int|null,
 "accessibilityNotes": string|null, "costEstimateUSD": number|null, "choiceReasoning": string|null}]}`

const optimizerSystemPrompt = `You are a conservative itinerary optimizer.

SCOPE:
- Consider ONLY the fields provided in the user message. Do NOT infer from missing fields.
- Allowed transport: exactly the provided list. No taxis or rideshare.
- Keep within the start..end window; keep legs at most 6; keep sequence logical and times chronological.
- If wheelchair accessibility is set: avoid stairs, reduce long walks in bad weather, prefer step-free
  options.

WEATHER POLICY:
- If no leg is weather-bad and there are no new budget constraints or preference notes, return the
  original sequence and times as a copy of the provided legs.
- If a leg has bad weather at depart or arrive: prefer subway over long walks, shift times slightly
  (45 min at most) to avoid the worst windows, replace outdoor activities with nearby indoor
  alternatives, and minimize deviation from the original plan.
- If a leg does not fit the budget: remove it or replace it with a cheaper alternative.
- If a leg conflicts with the preference notes: prioritize the notes while minimizing deviation.

OUTPUT a single JSON object:
{"summary": string, "changes": [{"change_type": "add"|"remove"|"extend"|"shorten"|"move"|"replace",
 "target_sequence": int|null, "new_sequence": int|null, "before": Leg|null, "after": Leg|null,
 "reason": string, "expected_time_delta_min": int|null, "expected_budget_delta_usd": number|null,
 "risk_notes": string|null}], "optimized": Itinerary, "assumptions": [string],
 "budget_summary": string|null, "notes": [string]}
Keep choiceReasoning short (15 words at most) when a leg changes for weather, budget, or preference
reasons.`

// ClientConfig holds configuration for the Gemini planning client.
type ClientConfig struct {
	// APIKey is the Google AI API key (required).
	APIKey string

	// Model overrides the default model name.
	Model string

	// Temperature for generation. Default: 0.4.
	Temperature float32

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client calls Gemini for itinerary generation and optimization. Each
// flow owns a pre-configured model so concurrent requests never share
// mutable generation state.
type Client struct {
	client         *genai.Client
	plannerModel   *genai.GenerativeModel
	optimizerModel *genai.GenerativeModel
	logger         zerolog.Logger
}

// NewClient creates a new Gemini planning client.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModel
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.4
	}

	return &Client{
		client:         client,
		plannerModel:   newModel(client, modelName, temperature, plannerSystemPrompt),
		optimizerModel: newModel(client, modelName, temperature, optimizerSystemPrompt),
		logger:         cfg.Logger.With().Str("provider", ProviderName).Logger(),
	}, nil
}

// newModel configures a model with its system instruction fixed at
// construction. Models must not be mutated after this; request handlers
// call them concurrently.
func newModel(client *genai.Client, name string, temperature float32, system string) *genai.GenerativeModel {
	model := client.GenerativeModel(name)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(temperature)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}
	return model
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.client.Close()
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GenerateItinerary asks the model for a fresh itinerary.
func (c *Client) GenerateItinerary(ctx context.Context, req *trip.Request) (*trip.Itinerary, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding trip request: %w", err)
	}

	userPrompt := fmt.Sprintf(`User trip request (ISO times are local):
%s

Task:
- Build an itinerary from %s to %s using ONLY these modes: %s.
- Window: %s to %s (local). Target overall duration ~%s hours if provided.
- Wheelchair accessible: %t.
- Cuisines (if any): %s. Dietary restrictions (if any): %s.
- Activity preferences (if any): %s. Budget constraints (if any): %s.
- Include very short notes in choiceReasoning about each choice and any constraint that may be violated.
- Each leg must be realistic and sequential with full, proper, exact locations. Keep legs to a maximum of %d.
- Add every attraction, place to visit, and restaurant as a location while obeying the constraints.
- Recheck that cost and time constraints are reflected in the JSON.`,
		reqJSON,
		req.StartLocation, req.EndLocation, strings.Join(req.TransportModes, ", "),
		req.StartTime.Format("2006-01-02T15:04:05"), req.EndTime.Format("2006-01-02T15:04:05"),
		req.TripDuration, req.WheelchairAccessible,
		req.Cuisines, req.DietPreferences,
		req.ActivityPreferences, req.BudgetPreferences,
		maxLegs,
	)

	raw, err := c.generate(ctx, c.plannerModel, userPrompt)
	if err != nil {
		return nil, err
	}

	var itin trip.Itinerary
	if err := json.Unmarshal([]byte(raw), &itin); err != nil {
		return nil, fmt.Errorf("decoding itinerary: %w", err)
	}
	return &itin, nil
}

// OptimizeItinerary asks the model to revise a plan under the minimal
// context.
func (c *Client) OptimizeItinerary(ctx context.Context, pc planner.Context) (*planner.OptimizationResult, error) {
	contextJSON, err := json.Marshal(pc)
	if err != nil {
		return nil, fmt.Errorf("encoding optimizer context: %w", err)
	}

	userPrompt := "Optimize ONLY if weather_risks indicate problems, or if new_preferences require a tweak.\n" +
		"Otherwise, return the provided current_legs unchanged (resequence 1..N if needed).\n" +
		"Return an OptimizationResult JSON.\n\n" + string(contextJSON)

	raw, err := c.generate(ctx, c.optimizerModel, userPrompt)
	if err != nil {
		return nil, err
	}

	var result planner.OptimizationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("decoding optimization result: %w", err)
	}
	return &result, nil
}

func (c *Client) generate(ctx context.Context, model *genai.GenerativeModel, user string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("gemini generation: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates from gemini")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			out.WriteString(string(txt))
		}
	}
	return stripCodeFences(out.String()), nil
}

// stripCodeFences removes markdown code fences the model sometimes
// wraps around JSON output despite the response MIME type.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
