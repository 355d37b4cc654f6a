package search

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNoJSONObject = errors.New("model output contains no JSON object")
)

// modelAnswer is the JSON object the model is asked to produce.
type modelAnswer struct {
	Answer               looseString     `json:"answer"`
	Confidence           looseConfidence `json:"confidence"`
	MissingInfo          looseString     `json:"missing_info"`
	EnrichmentSuggestion looseString     `json:"enrichment_suggestion"`
}

// parseAnswer decodes the first JSON object in raw model output. Markdown
// code fences and any prose around the object, braces included, are ignored.
func parseAnswer(raw string) (Result, error) {
	text := strings.TrimSpace(raw)
	if !strings.Contains(text, "{") {
		return Result{}, ErrNoJSONObject
	}

	var (
		answer   modelAnswer
		firstErr error
		decoded  bool
	)
	for offset := 0; offset < len(text); {
		i := strings.IndexByte(text[offset:], '{')
		if i < 0 {
			break
		}
		start := offset + i
		answer = modelAnswer{}
		err := json.NewDecoder(strings.NewReader(text[start:])).Decode(&answer)
		if err == nil {
			decoded = true
			break
		}
		if firstErr == nil {
			firstErr = err
		}
		offset = start + 1
	}
	if !decoded {
		return Result{}, fmt.Errorf("failed to parse model output: %w", firstErr)
	}

	return Result{
		Answer:               string(answer.Answer),
		Confidence:           float64(answer.Confidence),
		MissingInfo:          string(answer.MissingInfo),
		EnrichmentSuggestion: string(answer.EnrichmentSuggestion),
	}, nil
}

// looseString accepts a string, null, a number or a list of strings. null,
// booleans and zero mean "nothing" and decode to the empty string.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", "true", "false", "0":
		*s = ""
		return nil
	}

	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*s = looseString(strings.Join(items, "; "))
	default:
		*s = looseString(data)
	}
	return nil
}

// looseConfidence accepts a number or a numeric string and clamps it to [0, 1].
type looseConfidence float64

func (c *looseConfidence) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}

	var v float64
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("confidence %q is not a number", s)
		}
		v = parsed
	} else if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch {
	case v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	*c = looseConfidence(v)
	return nil
}
