package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// candidateStrategy looks for an embedded JSON payload in a model reply.
// It never fails; ok=false means "nothing found, try the next one".
type candidateStrategy func(text string) (candidate string, ok bool)

var (
	rxFencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	rxOuterBrace = regexp.MustCompile(`(?s)\{.*\}`)
)

// Strategies run in order, first match wins. rawText always matches.
var strategies = []candidateStrategy{
	fencedBlock,
	outerBraces,
	rawText,
}

func fencedBlock(text string) (string, bool) {
	m := rxFencedJSON.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func outerBraces(text string) (string, bool) {
	m := rxOuterBrace.FindString(text)
	if m == "" {
		return "", false
	}
	return m, true
}

func rawText(text string) (string, bool) {
	return text, true
}

// ExtractCandidate returns the substring of raw most likely to hold the payload:
// a ```json fenced block, else the first '{' through the last '}', else raw.
func ExtractCandidate(raw string) string {
	for _, s := range strategies {
		if c, ok := s(raw); ok {
			return c
		}
	}
	return raw
}

var resultSchema = mustSchema(`{
  "type": "object",
  "required": ["match_score", "matched_skills", "missing_skills", "suggestions", "insights"],
  "properties": {
    "match_score":    {"type": "integer", "minimum": 0, "maximum": 100},
    "matched_skills": {"type": "array", "items": {"type": "string"}},
    "missing_skills": {"type": "array", "items": {"type": "string"}},
    "suggestions":    {"type": "array", "items": {"type": "string"}},
    "insights":       {"type": "array", "items": {"type": "string"}}
  }
}`)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("analysis: invalid result schema: %v", err))
	}
	return s
}

// Normalize coerces a free-text model reply into a Result. Every failure is a
// *NormalizationError carrying the reply and the candidate that was tried.
func Normalize(raw string) (Result, error) {
	candidate := ExtractCandidate(raw)
	fail := func(msg string, err error) (Result, error) {
		return Result{}, &NormalizationError{
			Message:       msg,
			RawResponse:   raw,
			ExtractedJSON: candidate,
			Err:           err,
		}
	}

	if !json.Valid([]byte(candidate)) {
		var probe any
		return fail("failed to parse AI response", json.Unmarshal([]byte(candidate), &probe))
	}

	res, err := resultSchema.Validate(gojsonschema.NewStringLoader(candidate))
	if err != nil {
		return fail("failed to parse AI response", err)
	}
	if !res.Valid() {
		return fail("AI response does not match the expected structure", schemaErrors(res.Errors()))
	}

	out, err := decodeResult(candidate)
	if err != nil {
		return fail("failed to parse AI response", err)
	}
	return out, nil
}

// decodeResult reads a schema-valid payload. match_score goes through
// json.Number so whole values written as 88.0 or 8.8e1 are accepted, matching
// the schema's notion of an integer.
func decodeResult(candidate string) (Result, error) {
	var wire struct {
		Result
		MatchScore json.Number `json:"match_score"`
	}
	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()
	if err := dec.Decode(&wire); err != nil {
		return Result{}, err
	}
	score, err := wire.MatchScore.Float64()
	if err != nil {
		return Result{}, err
	}
	if score != math.Trunc(score) {
		return Result{}, fmt.Errorf("match_score %s is not a whole number", wire.MatchScore)
	}
	out := wire.Result
	out.MatchScore = int(score)
	return out, nil
}

func schemaErrors(errs []gojsonschema.ResultError) error {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		field := e.Field()
		if field == "" {
			field = "(root)"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Description()))
	}
	return errors.New(strings.Join(parts, "; "))
}
