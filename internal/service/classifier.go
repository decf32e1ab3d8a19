package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pageza/menuwise/backend/internal/ai"
	"github.com/pageza/menuwise/backend/internal/logger"
	"github.com/pageza/menuwise/backend/internal/metrics"
	"github.com/pageza/menuwise/backend/internal/types"
)

const (
	MsgNoMenu           = "No menu text was provided."
	MsgNoClassification = "The model did not classify any dishes."
)

// Tiers of the traffic-light classification.
var tiers = []string{"green", "orange", "red"}

// DishClassifierService buckets menu items into green, orange and red tiers
// for a diner. Like the extractor it reports failures in-band.
type DishClassifierService struct {
	ai        ai.Completer
	maxTokens int
	log       *zap.Logger
}

func NewDishClassifier(completer ai.Completer, maxTokens int, log *zap.Logger) *DishClassifierService {
	if maxTokens <= 0 {
		maxTokens = 500
	}
	return &DishClassifierService{ai: completer, maxTokens: maxTokens, log: logger.OrNop(log)}
}

func (c *DishClassifierService) Classify(ctx context.Context, menu string, prefs types.ClassificationPreferences) (result types.AIResult) {
	outcome := metrics.OutcomeSystemError
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("dish classification panicked", zap.Any("panic", r))
			result = types.ErrorResult(fmt.Sprint(r))
			outcome = metrics.OutcomeSystemError
		}
		metrics.AIPipelineResults.WithLabelValues(stageClassify, outcome).Inc()
	}()

	if isBlank(menu) {
		return types.ErrorResult(MsgNoMenu)
	}

	content, err := c.ai.Complete(ctx, ai.ChatRequest{
		Messages:    []ai.ChatMessage{ai.UserMessage(ai.TextPart(BuildClassificationPrompt(menu, prefs)))},
		Temperature: 0,
		TopP:        1,
		MaxTokens:   c.maxTokens,
		N:           1,
		Stage:       stageClassify,
	})
	if err != nil {
		return types.ErrorResult(err.Error())
	}

	obj, err := decodeModelOutput(content)
	if err != nil {
		if !errors.Is(err, errEmptyOutput) {
			c.log.Debug("classification output is not JSON", zap.Int("length", len(content)))
		}
		return types.ErrorResult(MsgInvalidJSON)
	}
	if _, failed := obj.ErrorMessage(); failed {
		outcome = metrics.OutcomeModelError
		return obj
	}

	classified := normalizeClassification(obj)
	if len(classified) == 0 {
		return types.ErrorResult(MsgNoClassification)
	}

	outcome = metrics.OutcomeOK
	return classified
}

// BuildClassificationPrompt renders the instruction sent to the model. An
// empty flavor profile is replaced by DefaultFlavorProfile.
func BuildClassificationPrompt(menu string, prefs types.ClassificationPreferences) string {
	profile := prefs.FlavorProfile
	if len(profile) == 0 {
		profile = DefaultFlavorProfile()
	}
	flavors := make([]string, 0, len(profile))
	for name := range profile {
		flavors = append(flavors, name)
	}
	sort.Strings(flavors)

	var b strings.Builder
	b.WriteString("You are helping a diner choose from a restaurant menu.\n\n")
	b.WriteString("Menu (JSON object of item to price):\n")
	b.WriteString(strings.TrimSpace(menu))
	b.WriteString("\n\nFlavor profile (1 = dislikes, 10 = loves):\n")
	for _, name := range flavors {
		fmt.Fprintf(&b, "- %s: %d\n", name, profile[name])
	}
	fmt.Fprintf(&b, "\nAllergies: %s\n", listOrNone(prefs.Allergies))
	fmt.Fprintf(&b, "Dietary constraints: %s\n\n", listOrNone(prefs.Constraints))
	b.WriteString("Group the menu items into categories you infer from the menu, such as beverages, mains, sides and desserts. ")
	b.WriteString("Within each category put every item in exactly one of these lists:\n")
	b.WriteString(`- "green": the diner will likely enjoy it and it is safe for the allergies and constraints` + "\n")
	b.WriteString(`- "orange": uncertain fit, or it may need a modification to be safe` + "\n")
	b.WriteString(`- "red": likely disliked, or it conflicts with an allergy or dietary constraint` + "\n\n")
	b.WriteString(`Respond with JSON only, no extra text, shaped as {"<category>": {"green": [], "orange": [], "red": []}}.`)
	return b.String()
}

func listOrNone(items []string) string {
	var kept []string
	for _, item := range items {
		if !isBlank(item) {
			kept = append(kept, strings.TrimSpace(item))
		}
	}
	if len(kept) == 0 {
		return "none"
	}
	return strings.Join(kept, ", ")
}

// normalizeClassification keeps only object-valued categories and coerces
// each tier to a list of strings. Missing tiers become empty lists.
func normalizeClassification(obj types.AIResult) types.AIResult {
	out := types.AIResult{}
	for category, raw := range obj {
		buckets, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		normalized := make(map[string]interface{}, len(tiers))
		for _, tier := range tiers {
			normalized[tier] = toStrings(buckets[tier])
		}
		out[category] = normalized
	}
	return out
}

func toStrings(v interface{}) []string {
	out := []string{}
	switch items := v.(type) {
	case []interface{}:
		for _, item := range items {
			switch s := item.(type) {
			case string:
				out = append(out, s)
			case json.Number:
				out = append(out, s.String())
			case nil:
			default:
				out = append(out, ai.Compact(s))
			}
		}
	case string:
		if !isBlank(items) {
			out = append(out, items)
		}
	}
	return out
}
