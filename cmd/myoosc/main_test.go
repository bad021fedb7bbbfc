package main

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/myo-osc/internal/infrastructure/config"
	"github.com/nerrad567/myo-osc/internal/settings"
)

// runArgs runs the application with captured output.
func runArgs(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(config.EnvServiceConfig, "")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var stdout, stderr bytes.Buffer
	err := run(ctx, args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

// writeServiceConfig writes a service configuration file for one test.
func writeServiceConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "myoosc.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestRun_Version(t *testing.T) {
	stdout, _, err := runArgs(t, "--version")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.HasPrefix(stdout, "myoosc dev") {
		t.Errorf("stdout = %q, want version line", stdout)
	}
}

func TestRun_Help(t *testing.T) {
	_, stderr, err := runArgs(t, "--help")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(stderr, "Usage: myoosc") || !strings.Contains(stderr, "--service-config") {
		t.Errorf("stderr = %q, want usage", stderr)
	}
}

func TestRun_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "too many positionals", args: []string{"a", "b", "c"}},
		{name: "bad port", args: []string{"notaport"}},
		{name: "unknown flag", args: []string{"--bogus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := runArgs(t, tt.args...)
			if !errors.Is(err, settings.ErrInvalidArguments) {
				t.Fatalf("run() error = %v, want ErrInvalidArguments", err)
			}
			if !strings.Contains(stderr, "Usage: myoosc") {
				t.Errorf("stderr = %q, want usage", stderr)
			}
		})
	}
}

func TestRun_InvalidChannelDocument(t *testing.T) {
	path := writeServiceConfig(t, `{"accel": 42}`)

	_, _, err := runArgs(t, "--config", path)
	if !errors.Is(err, settings.ErrInvalidConfig) {
		t.Fatalf("run() error = %v, want ErrInvalidConfig", err)
	}
}

func TestRun_InvalidServiceConfig(t *testing.T) {
	_, _, err := runArgs(t, "--service-config", "/nonexistent/path/myoosc.yaml")
	if err == nil || !strings.Contains(err.Error(), "loading config") {
		t.Fatalf("run() error = %v, want loading config failure", err)
	}
}

func TestRun_ServiceConfigFromEnv(t *testing.T) {
	t.Setenv(config.EnvServiceConfig, "/nonexistent/path/myoosc.yaml")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), nil, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "loading config") {
		t.Fatalf("run() error = %v, want loading config failure", err)
	}
}

func TestRun_SimulatorToOSC(t *testing.T) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer conn.Close()
	port := conn.LocalAddr().(*net.UDPAddr).Port

	path := writeServiceConfig(t, `
logging:
  level: error
source:
  type: simulator
  interval: 1
  steps: 3
relay:
  enabled: false
`)

	stdout, _, err := runArgs(t,
		"--service-config", path,
		"--no-console", "--log-osc",
		"--accel", "--pose=/custom/pose",
		"127.0.0.1", strconv.Itoa(port),
	)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if !strings.Contains(stdout, "Sending OSC to 127.0.0.1:"+strconv.Itoa(port)) {
		t.Errorf("stdout missing settings summary: %q", stdout)
	}
	if !strings.Contains(stdout, "/myo/accel:") {
		t.Errorf("stdout missing accel trace: %q", stdout)
	}
	if strings.Contains(stdout, "/myo/gyro:") {
		t.Errorf("gyro should be disabled: %q", stdout)
	}

	buf := make([]byte, 1024)
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("deadline: %v", err)
	}
	n, _, err := conn.ReadFrom(buf)
	if err != nil {
		t.Fatalf("no OSC packet received: %v", err)
	}
	if !bytes.HasPrefix(buf[:n], []byte("/myo/accel")) && !bytes.HasPrefix(buf[:n], []byte("/custom/pose")) {
		t.Errorf("unexpected packet %q", buf[:n])
	}
}

func TestRun_ReplayMissingFile(t *testing.T) {
	path := writeServiceConfig(t, `
source:
  type: replay
  file: /nonexistent/recording.jsonl
osc:
  enabled: false
`)

	_, _, err := runArgs(t, "--service-config", path, "--no-console")
	if err == nil || !strings.Contains(err.Error(), "opening recording") {
		t.Fatalf("run() error = %v, want opening recording failure", err)
	}
}

func TestRun_ReplayToTrace(t *testing.T) {
	dir := t.TempDir()
	recording := filepath.Join(dir, "session.jsonl")
	content := `# recorded session
{"t":0,"type":"arm-sync","arm":"left","direction":"towardWrist"}
{"t":1000,"type":"pose","pose":"fist"}
`
	if err := os.WriteFile(recording, []byte(content), 0o600); err != nil {
		t.Fatalf("writing recording: %v", err)
	}
	path := writeServiceConfig(t, `
logging:
  level: error
source:
  type: replay
  file: `+recording+`
osc:
  enabled: false
`)

	stdout, _, err := runArgs(t, "--service-config", path, "--no-console", "--log-osc", "--pose", "--sync")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(stdout, "/myo/sync:") || !strings.Contains(stdout, "  L") {
		t.Errorf("stdout missing sync trace: %q", stdout)
	}
	if !strings.Contains(stdout, "/myo/pose:") || !strings.Contains(stdout, "fist") {
		t.Errorf("stdout missing pose trace: %q", stdout)
	}
}

func TestRun_RecordThenReplay(t *testing.T) {
	recording := filepath.Join(t.TempDir(), "session.jsonl")
	simulate := writeServiceConfig(t, `
logging:
  level: error
source:
  type: simulator
  interval: 1
  steps: 2
osc:
  enabled: false
`)

	if _, _, err := runArgs(t, "--service-config", simulate, "--no-console", "--record", recording); err != nil {
		t.Fatalf("recording run() error = %v", err)
	}

	data, err := os.ReadFile(recording)
	if err != nil {
		t.Fatalf("reading recording: %v", err)
	}
	if !strings.Contains(string(data), `"type":"accelerometer"`) || !strings.Contains(string(data), `"type":"arm-sync"`) {
		t.Fatalf("recording missing events: %s", data)
	}

	replay := writeServiceConfig(t, `
logging:
  level: error
source:
  type: replay
  file: `+recording+`
osc:
  enabled: false
`)
	stdout, _, err := runArgs(t, "--service-config", replay, "--no-console", "--log-osc", "--accel")
	if err != nil {
		t.Fatalf("replay run() error = %v", err)
	}
	if strings.Count(stdout, "/myo/accel:") != 2 {
		t.Errorf("stdout = %q, want two accel lines", stdout)
	}
}
