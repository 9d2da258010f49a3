package types

import (
	"log/slog"
	"testing"
)

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
		valid bool
	}{
		{LevelInfo, slog.LevelInfo, true},
		{LevelSuccess, slog.Level(2), true},
		{LevelWarning, slog.LevelWarn, true},
		{LevelError, slog.LevelError, true},
		{Level("DEBUG"), slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := tt.level.SlogLevel(); got != tt.want {
				t.Errorf("SlogLevel() = %v, want %v", got, tt.want)
			}
			if got := tt.level.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestLevel_SuccessOrdering(t *testing.T) {
	if !(LevelInfo.SlogLevel() < LevelSuccess.SlogLevel() && LevelSuccess.SlogLevel() < LevelWarning.SlogLevel()) {
		t.Error("SUCCESS should sort between INFO and WARNING")
	}
}
