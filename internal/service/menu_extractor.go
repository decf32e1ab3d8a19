package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/pageza/menuwise/backend/internal/ai"
	"github.com/pageza/menuwise/backend/internal/logger"
	"github.com/pageza/menuwise/backend/internal/metrics"
	"github.com/pageza/menuwise/backend/internal/types"
)

// Messages of extraction failures detected by this service.
const (
	MsgNoText          = "There was no text in the image you uploaded"
	MsgInvalidJSON     = "Invalid JSON response."
	MsgNotEnglish      = "Currently we only work with English text."
	MsgNotMenuRelevant = "The uploaded image does not contain menu-relevant information."
)

const (
	stageExtract  = "extract"
	stageClassify = "classify"
)

const extractionPrompt = `Extract the text of the restaurant menu in this image.
Respond with ONLY a JSON object that maps each menu item to its price, for example {"Caesar Salad": "$9.50", "Iced Tea": "$3.00"}.
Use an empty string when an item has no visible price.
If the image does not contain English menu text, respond with ONLY {"error": "<short reason>"}.
Do not wrap the JSON in markdown and do not add any other text.`

var (
	errEmptyOutput = errors.New("empty model output")
	errInvalidJSON = errors.New("invalid model output")

	menuKeywords = regexp.MustCompile(`(?i)menu|dish|price|meal|drink|food`)
	pricePattern = regexp.MustCompile(`[$€£¥]\s?\d|\d+[.,]\d{2}\b`)
)

// MenuExtractorService turns a menu photo into an item to price document.
// It never returns an error: every failure is an AIResult with an "error" key.
type MenuExtractorService struct {
	ai        ai.Completer
	maxTokens int
	log       *zap.Logger
}

func NewMenuExtractor(completer ai.Completer, maxTokens int, log *zap.Logger) *MenuExtractorService {
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	return &MenuExtractorService{ai: completer, maxTokens: maxTokens, log: logger.OrNop(log)}
}

func (e *MenuExtractorService) ExtractMenu(ctx context.Context, image []byte) (result types.AIResult) {
	outcome := metrics.OutcomeSystemError
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("menu extraction panicked", zap.Any("panic", r))
			result = types.ErrorResult(fmt.Sprint(r))
			outcome = metrics.OutcomeSystemError
		}
		metrics.AIPipelineResults.WithLabelValues(stageExtract, outcome).Inc()
	}()

	if len(image) == 0 {
		return types.ErrorResult(MsgNoText)
	}

	content, err := e.ai.Complete(ctx, ai.ChatRequest{
		Messages:    []ai.ChatMessage{ai.UserMessage(ai.TextPart(extractionPrompt), ai.ImagePart(image))},
		Temperature: 0,
		TopP:        1,
		MaxTokens:   e.maxTokens,
		N:           1,
		Stage:       stageExtract,
	})
	if err != nil {
		return types.ErrorResult(err.Error())
	}

	obj, err := decodeModelOutput(content)
	switch {
	case errors.Is(err, errEmptyOutput):
		return types.ErrorResult(MsgNoText)
	case err != nil:
		e.log.Debug("extraction output is not JSON", zap.Int("length", len(content)))
		return types.ErrorResult(MsgInvalidJSON)
	}

	if _, failed := obj.ErrorMessage(); failed {
		outcome = metrics.OutcomeModelError
		return obj
	}
	if len(obj) == 0 {
		return types.ErrorResult(MsgNoText)
	}

	serialized := ai.Compact(obj)
	if !hasLatinLetter(serialized) {
		return types.ErrorResult(MsgNotEnglish)
	}
	if !isMenuRelevant(serialized) {
		return types.ErrorResult(MsgNotMenuRelevant)
	}

	outcome = metrics.OutcomeOK
	return obj
}

// decodeModelOutput strips markdown fences and parses the model text as an
// object, falling back to the outermost {...} span when prose surrounds it.
func decodeModelOutput(content string) (types.AIResult, error) {
	text := ai.StripFences(content)
	if text == "" {
		return nil, errEmptyOutput
	}

	obj, err := ai.DecodeObject(text)
	if err != nil {
		span, spanErr := ai.ExtractJSON(text)
		if spanErr != nil {
			return nil, errInvalidJSON
		}
		if obj, err = ai.DecodeObject(span); err != nil {
			return nil, errInvalidJSON
		}
	}
	return types.AIResult(obj), nil
}

func hasLatinLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && unicode.Is(unicode.Latin, r) {
			return true
		}
	}
	return false
}

// isMenuRelevant accepts text mentioning menu vocabulary or anything that
// looks like a price. A bare number is not enough.
func isMenuRelevant(serialized string) bool {
	return menuKeywords.MatchString(serialized) || pricePattern.MatchString(serialized)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
