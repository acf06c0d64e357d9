package types

import (
	"testing"
	"time"
)

func TestMode_String(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeNormal, "NORMAL"},
		{ModeDrag, "DRAG"},
		{ModeEdit, "EDIT"},
		{ModePrompt, "PROMPT"},
		{Mode(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestToast_Expired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	toast := NewToast(ToastInfo, "saved", now, time.Second)

	if toast.Expired(now) {
		t.Error("fresh toast should not be expired")
	}
	if !toast.Expired(now.Add(time.Second)) {
		t.Error("toast should expire at its deadline")
	}
}
