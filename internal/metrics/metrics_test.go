package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestNewCollector_DuplicateRegistrationPanics は同一レジストリへの二重登録がpanicすることを検証する。
func TestNewCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewCollector(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	_ = NewCollector(reg)
}

// TestRecordRequest はリクエストカウンタとヒストグラムが記録されることを検証する。
func TestRecordRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequest("GET", "/veiculos/{id}", 200, 20*time.Millisecond)
	c.RecordRequest("GET", "/veiculos/{id}", 200, 30*time.Millisecond)
	c.RecordRequest("GET", "/veiculos/{id}", 404, time.Millisecond)

	if got := testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/veiculos/{id}", "200")); got != 2 {
		t.Errorf("requests{200} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/veiculos/{id}", "404")); got != 1 {
		t.Errorf("requests{404} = %v, want 1", got)
	}

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	found := false
	for _, mf := range metrics {
		if mf.GetName() == "veiculos_http_request_duration_seconds" {
			found = true
			if n := mf.GetMetric()[0].GetHistogram().GetSampleCount(); n != 3 {
				t.Errorf("duration sample count = %d, want 3", n)
			}
		}
	}
	if !found {
		t.Error("veiculos_http_request_duration_seconds metric not found")
	}
}

// TestRecordLogin はログイン結果別のカウンタが増加することを検証する。
func TestRecordLogin(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin(LoginSuccess)
	c.RecordLogin(LoginFailure)
	c.RecordLogin(LoginFailure)

	if got := testutil.ToFloat64(c.logins.WithLabelValues(LoginSuccess)); got != 1 {
		t.Errorf("login{success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.logins.WithLabelValues(LoginFailure)); got != 2 {
		t.Errorf("login{failure} = %v, want 2", got)
	}
}

// TestRecordAuthDenied は拒否理由別のカウンタが増加することを検証する。
func TestRecordAuthDenied(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAuthDenied(DenialRole)

	if got := testutil.ToFloat64(c.authDenied.WithLabelValues(DenialRole)); got != 1 {
		t.Errorf("auth_denied{role} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(c.authDenied); got != 1 {
		t.Errorf("auth_denied series = %d, want 1", got)
	}
}
