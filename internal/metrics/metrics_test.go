package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Completions(t *testing.T) {
	r := NewRecorder()

	r.ObserveCompletion("gemini", 300*time.Millisecond, nil)
	r.ObserveCompletion("gemini", time.Second, errors.New("boom"))
	r.ObserveCompletion("gemini", time.Second, nil)

	if got := testutil.ToFloat64(r.completions.WithLabelValues("gemini", "ok")); got != 2 {
		t.Errorf("ok completions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.completions.WithLabelValues("gemini", "error")); got != 1 {
		t.Errorf("error completions = %v, want 1", got)
	}
}

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder

	r.ObserveCompletion("openai", time.Second, nil)
	r.ObserveThrottleWait(time.Second)
	r.IncParseFailure()
	r.ObserveSynthesis(nil)
	r.ObserveCacheLookup(true)
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.IncParseFailure()
	r.ObserveCacheLookup(false)
	r.ObserveSynthesis(errors.New("tts down"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		"lughat_parse_failures_total 1",
		`lughat_cache_lookups_total{result="miss"} 1`,
		`lughat_synthesis_total{outcome="error"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected metrics output to contain %q", want)
		}
	}
}
