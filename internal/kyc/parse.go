// Package kyc turns raw analysis-engine output into the structured mapping
// the verification pipeline reasons about, and holds the field heuristics
// the risk stage depends on.
package kyc

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// RequiredFields is the fixed set checked when computing missing fields.
var RequiredFields = []string{
	"full_name",
	"date_of_birth",
	"address",
	"id_number",
	"source_of_funds",
}

// rawTextBound caps how much raw engine text is carried into an unstructured
// fallback mapping.
const rawTextBound = 5000

// Parse converts a raw engine response into a best-effort structured mapping.
// A JSON object that passes the acceptance schema is returned as-is; anything
// else is wrapped so downstream heuristics still see the text. Parse never
// fails.
func Parse(raw string, logger *slog.Logger) map[string]any {
	if logger == nil {
		logger = slog.Default()
	}

	if payload, ok := extractJSONObject(raw); ok {
		if err := ValidateAgainstSchema(BuildKYCSchema(), payload); err == nil {
			var m map[string]any
			if uerr := json.Unmarshal(payload, &m); uerr == nil {
				return m
			}
		} else {
			logger.Warn("kyc.parse.schema_rejected", "error", err)
		}
	}

	return map[string]any{
		"parsed":   false,
		"origin":   "raw_analysis",
		"raw_text": bound(raw, rawTextBound),
	}
}

// extractJSONObject locates the outermost JSON object in raw, tolerating
// markdown code fences and surrounding prose.
func extractJSONObject(raw string) ([]byte, bool) {
	s := strings.TrimSpace(raw)
	if fenced, ok := stripFence(s); ok {
		s = fenced
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return nil, false
	}
	candidate := []byte(s[start : end+1])
	if !json.Valid(candidate) {
		return nil, false
	}
	return candidate, true
}

func stripFence(s string) (string, bool) {
	if !strings.HasPrefix(s, "```") {
		return "", false
	}
	body := s[3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:] // drop the language tag line
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body), true
}

// Serialize renders the mapping the way the heuristics expect to scan it.
// json.Marshal sorts map keys, so the output is deterministic.
func Serialize(data map[string]any) string {
	b, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return string(b)
}

// MissingRequiredFields returns the required fields not present as
// case-insensitive substrings of the serialized mapping. This is a heuristic,
// not a schema-aware check; it intentionally matches on field names anywhere
// in the payload, including carried-over raw text.
func MissingRequiredFields(data map[string]any) []string {
	serialized := strings.ToLower(Serialize(data))
	missing := []string{}
	for _, field := range RequiredFields {
		if !strings.Contains(serialized, field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// ContainsAllOf reports whether every token occurs in text, case-insensitive.
// The PEP heuristic lives behind this so a schema-aware check can replace it
// without touching the state machine.
func ContainsAllOf(text string, tokens ...string) bool {
	lower := strings.ToLower(text)
	for _, tok := range tokens {
		if !strings.Contains(lower, strings.ToLower(tok)) {
			return false
		}
	}
	return true
}

func bound(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
