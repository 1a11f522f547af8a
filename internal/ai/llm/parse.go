package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/spigell/hh-interviewer/internal/ai"

	"github.com/mitchellh/mapstructure"
)

type judgeResponse struct {
	Technical      *float64 `mapstructure:"technical"`
	Communication  *float64 `mapstructure:"communication"`
	Structure      *float64 `mapstructure:"structure"`
	Confidence     *float64 `mapstructure:"confidence"`
	Strengths      []string `mapstructure:"strengths"`
	Improvements   []string `mapstructure:"improvements"`
	BriefReasoning string   `mapstructure:"brief_reasoning"`
	Reasoning      string   `mapstructure:"reasoning"`
}

func parseJudgment(raw string) (*ai.Judgment, error) {
	data, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	var resp judgeResponse
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &resp,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("%w: decode judgment: %v", ai.ErrMalformedOutput, err)
	}

	for name, v := range map[string]*float64{
		"technical":     resp.Technical,
		"communication": resp.Communication,
		"structure":     resp.Structure,
		"confidence":    resp.Confidence,
	} {
		if v == nil {
			return nil, fmt.Errorf("%w: judgment is missing %s score", ai.ErrMalformedOutput, name)
		}
	}

	rationale := strings.TrimSpace(resp.BriefReasoning)
	if rationale == "" {
		rationale = strings.TrimSpace(resp.Reasoning)
	}

	return &ai.Judgment{
		Technical:     scale(resp.Technical),
		Communication: scale(resp.Communication),
		Structure:     scale(resp.Structure),
		Confidence:    scale(resp.Confidence),
		Rationale:     rationale,
		Strengths:     cleanList(resp.Strengths),
		Improvements:  cleanList(resp.Improvements),
		Raw:           raw,
	}, nil
}

func parseQuestion(raw string) (string, error) {
	cleaned := extractJSON(raw)
	if strings.HasPrefix(cleaned, "{") {
		data, err := decodeObject(cleaned)
		if err != nil {
			return "", err
		}
		question, _ := data["question"].(string)
		question = strings.TrimSpace(question)
		if question == "" {
			return "", fmt.Errorf("%w: question field is empty", ai.ErrMalformedOutput)
		}
		return question, nil
	}

	question := strings.Trim(strings.TrimSpace(raw), `"`)
	if question == "" {
		return "", fmt.Errorf("%w: empty question", ai.ErrMalformedOutput)
	}
	return question, nil
}

func decodeObject(raw string) (map[string]any, error) {
	cleaned := extractJSON(raw)
	if start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrMalformedOutput, err)
	}
	return data, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// scale clamps a score to 0-10. Values that look like percentages are brought down.
func scale(v *float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return 0
	}
	score := *v
	if score > 10 && score <= 100 {
		score /= 10
	}
	return math.Max(0, math.Min(10, score))
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
