package kyc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compliancehq/kyc-verifier/internal/kyc"
)

func TestParse_CleanJSON(t *testing.T) {
	raw := `{"full_name":"Jane Smith","pep_status":"No","source_of_funds":"Salary"}`
	m := kyc.Parse(raw, nil)

	assert.Equal(t, "Jane Smith", m["full_name"])
	assert.Equal(t, "No", m["pep_status"])
	assert.NotContains(t, m, "raw_text")
}

func TestParse_FencedJSON(t *testing.T) {
	raw := "Here is the extraction:\n```json\n{\"full_name\": \"Jane Smith\", \"address\": \"456 Oak Avenue\"}\n```\nLet me know if you need more."
	m := kyc.Parse(raw, nil)

	assert.Equal(t, "Jane Smith", m["full_name"])
	assert.Equal(t, "456 Oak Avenue", m["address"])
}

func TestParse_UnstructuredTextWrapped(t *testing.T) {
	raw := "The customer appears to be Jane Smith, date_of_birth unclear."
	m := kyc.Parse(raw, nil)

	assert.Equal(t, false, m["parsed"])
	assert.Equal(t, raw, m["raw_text"])
}

func TestParse_SchemaRejectionFallsBackToWrapper(t *testing.T) {
	// pep_status must be a string; a boolean fails the acceptance schema.
	raw := `{"pep_status": true}`
	m := kyc.Parse(raw, nil)

	assert.Equal(t, false, m["parsed"])
	assert.Contains(t, m["raw_text"], "pep_status")
}

func TestParse_EmptyResponse(t *testing.T) {
	m := kyc.Parse("", nil)
	assert.Equal(t, false, m["parsed"])
	assert.Equal(t, "", m["raw_text"])
}

func TestMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want []string
	}{
		{
			name: "all present",
			data: map[string]any{
				"full_name":       "Jane Smith",
				"date_of_birth":   "1985-02-15",
				"address":         "456 Oak Avenue",
				"id_number":       "S98765432",
				"source_of_funds": "Salary",
			},
			want: []string{},
		},
		{
			name: "all absent",
			data: map[string]any{"parsed": false, "origin": "raw_analysis"},
			want: []string{"full_name", "date_of_birth", "address", "id_number", "source_of_funds"},
		},
		{
			name: "field name inside raw text counts as present",
			data: map[string]any{"raw_text": "Full_Name: Jane\nID_Number: 123"},
			want: []string{"date_of_birth", "address", "source_of_funds"},
		},
		{
			name: "nested values are scanned too",
			data: map[string]any{
				"personal": map[string]any{"full_name": "Jane", "address": "Oak Ave"},
			},
			want: []string{"date_of_birth", "id_number", "source_of_funds"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kyc.MissingRequiredFields(tt.data))
		})
	}
}

func TestContainsAllOf(t *testing.T) {
	assert.True(t, kyc.ContainsAllOf("PEP Status: Yes", "pep", "yes"))
	assert.False(t, kyc.ContainsAllOf("PEP Status: No", "pep", "yes"))
	assert.False(t, kyc.ContainsAllOf("nothing relevant", "pep", "yes"))
	assert.True(t, kyc.ContainsAllOf("anything"))
}

func TestSerialize_Deterministic(t *testing.T) {
	data := map[string]any{"b": 1, "a": "x", "c": map[string]any{"z": true}}
	first := kyc.Serialize(data)
	require.NotEmpty(t, first)
	assert.Equal(t, first, kyc.Serialize(data))
}
