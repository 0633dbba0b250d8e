package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compliancehq/kyc-verifier/internal/analysis"
	"github.com/compliancehq/kyc-verifier/internal/prepare"
)

var testDocs = []prepare.DocumentContent{
	{FileName: "kyc.txt", FileType: "Text File", TextContent: "Name: Jane Smith"},
}

func chatResponse(content string) string {
	return `{"choices":[{"message":{"content":"` + content + `"}}]}`
}

func TestAnalyze_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(chatResponse("analysis report")))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	res, err := c.Analyze(context.Background(), testDocs, analysis.TaskDocumentProcessing)
	require.NoError(t, err)
	assert.Equal(t, "analysis report", res.Text)
}

func TestAnalyze_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(chatResponse("recovered")))
	}))
	defer srv.Close()

	c := NewClient(Config{
		APIKey:       "k",
		BaseURL:      srv.URL,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}, nil)

	res, err := c.Analyze(context.Background(), testDocs, analysis.TaskKYCExtraction)
	require.NoError(t, err)
	assert.Equal(t, "recovered", res.Text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAnalyze_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL, MaxRetries: 3, RetryBackoff: time.Millisecond}, nil)

	_, err := c.Analyze(context.Background(), testDocs, analysis.TaskDocumentProcessing)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAnalyze_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := c.Analyze(context.Background(), testDocs, analysis.TaskDocumentProcessing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestSystemPrompt_TaskSpecific(t *testing.T) {
	extraction := systemPrompt(analysis.TaskKYCExtraction)
	processing := systemPrompt(analysis.TaskDocumentProcessing)

	assert.Contains(t, extraction, "JSON")
	assert.Contains(t, extraction, "pep_status")
	assert.Contains(t, processing, "analysis report")
	assert.NotEqual(t, extraction, processing)
}
