package health

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zero-day-ai/uniguard/exec"
)

func TestStatic(t *testing.T) {
	tests := []struct {
		name     string
		passed   bool
		wantCode int
	}{
		{name: "passing", passed: true, wantCode: 0},
		{name: "failing", passed: false, wantCode: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Static(tt.passed).Run(context.Background())
			assert.Equal(t, tt.passed, res.Passed)
			assert.Equal(t, tt.wantCode, res.ExitCode)
			assert.NoError(t, res.Err)
		})
	}
}

func TestCheckFunc(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seen context.Context
	check := CheckFunc(func(ctx context.Context) CheckResult {
		seen = ctx
		return CheckResult{Passed: true, Duration: time.Millisecond}
	})

	res := check.Run(ctx)
	assert.True(t, res.Passed)
	assert.Equal(t, time.Millisecond, res.Duration)
	assert.Equal(t, ctx, seen)
}

func TestCommandCheck_Timeout(t *testing.T) {
	cfg := PingCommand("192.0.2.1")
	cfg.Command = "sleep"
	cfg.Args = []string{"5"}
	cfg.Timeout = 50 * time.Millisecond

	res := CommandCheck{Command: cfg}.Run(context.Background())
	assert.False(t, res.Passed)
	assert.Equal(t, -1, res.ExitCode)
	assert.Error(t, res.Err)
}

func TestCommandCheck_Binary(t *testing.T) {
	tests := []struct {
		name    string
		command exec.Config
		want    string
	}{
		{"plain command", exec.Config{Command: "ping", Args: []string{"-c", "1", "8.8.8.8"}}, "ping"},
		{"shell pipeline", exec.Shell("df -h / | head -2"), "df"},
		{"shell with leading space", exec.Shell("  free -h"), "free"},
		{"empty shell line", exec.Shell(""), "sh"},
		{"sh with other args", exec.Config{Command: "sh", Args: []string{"script.sh"}}, "sh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommandCheck{Command: tt.command}.Binary())
		})
	}
}
