package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nerrad567/myo-osc/internal/channel"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape status = %d, want 200", rec.Code)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("reading scrape: %v", err)
	}
	return string(body)
}

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.MessageSent(channel.Accel)
	m.MessageSent(channel.Accel)
	m.MessageSent(channel.Pose)
	m.MessageDropped(channel.Gyro, "division_by_zero")
	m.SinkFailed(channel.EMG)
	m.SetRelayClients(3)

	body := scrape(t, m)

	want := []string{
		`myoosc_messages_sent_total{channel="accel"} 2`,
		`myoosc_messages_sent_total{channel="pose"} 1`,
		`myoosc_messages_dropped_total{channel="gyro",reason="division_by_zero"} 1`,
		`myoosc_sink_failures_total{channel="emg"} 1`,
		`myoosc_relay_clients 3`,
	}
	for _, line := range want {
		if !strings.Contains(body, line) {
			t.Errorf("scrape missing %q\n%s", line, body)
		}
	}
}

func TestMetrics_Independent(t *testing.T) {
	a, b := New(), New()
	a.MessageSent(channel.RSSI)

	if strings.Contains(scrape(t, b), `channel="rssi"`) {
		t.Error("registries should not share collectors")
	}
}
