package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRegistryAndHandler(t *testing.T) {
	RecordRequest("POST", "/api/v1/schedule/validate", 200, 15*time.Millisecond)
	RecordValidation(true)
	RecordValidation(false)
	RecordOptimize(true, 120*time.Millisecond, 42, 0.93)
	SetCoverageRate(87.5)
	SetFairnessGini("workload", 0.12)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	text := string(body)

	for _, want := range []string{
		"zhiban_http_requests_total",
		"zhiban_validation_total",
		"zhiban_optimize_total",
		"zhiban_coverage_rate",
		"zhiban_fairness_gini",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("指标输出缺少 %s", want)
		}
	}
	if !strings.Contains(text, `result="pass"`) || !strings.Contains(text, `result="fail"`) {
		t.Errorf("校验指标标签缺失:\n%s", text)
	}
}

func TestCounterLabels(t *testing.T) {
	r := GetRegistry()
	c := r.GetCounter("zhiban_validation_total")
	if c == nil {
		t.Fatal("默认指标未注册")
	}

	c.Inc("pass")
	c.Inc("pass")
	c.Add(3, "fail")
	// 输出应可重复获取且不 panic
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
}
