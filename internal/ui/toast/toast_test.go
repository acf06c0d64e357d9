package toast

import (
	"strings"
	"testing"
	"time"

	"github.com/museboard/museboard/internal/types"
	"github.com/museboard/museboard/internal/ui/styles"
	"github.com/stretchr/testify/assert"
)

func TestToastRenderer_Render_Empty(t *testing.T) {
	renderer := New(styles.New())
	assert.Equal(t, "", renderer.Render(nil, 80))
}

func TestToastRenderer_Render(t *testing.T) {
	renderer := New(styles.New())
	now := time.Now()

	tests := []struct {
		name  string
		level types.ToastLevel
	}{
		{"info", types.ToastInfo},
		{"success", types.ToastSuccess},
		{"warning", types.ToastWarning},
		{"error", types.ToastError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := renderer.Render([]types.Toast{types.NewToast(tt.level, "Board exported", now, time.Second)}, 90)
			assert.Contains(t, result, "Board exported")
		})
	}
}

func TestToastRenderer_Render_Stack(t *testing.T) {
	renderer := New(styles.New())
	now := time.Now()

	result := renderer.Render([]types.Toast{
		types.NewToast(types.ToastInfo, "First", now, time.Second),
		types.NewToast(types.ToastError, "Second", now, time.Second),
	}, 90)

	assert.Contains(t, result, "First")
	assert.Contains(t, result, "Second")
	assert.Less(t, strings.Index(result, "First"), strings.Index(result, "Second"))
}

func TestPrune(t *testing.T) {
	now := time.Now()
	toasts := []types.Toast{
		types.NewToast(types.ToastInfo, "old", now.Add(-time.Minute), time.Second),
		types.NewToast(types.ToastInfo, "a", now, time.Second),
		types.NewToast(types.ToastInfo, "b", now, time.Second),
		types.NewToast(types.ToastInfo, "c", now, time.Second),
		types.NewToast(types.ToastInfo, "d", now, time.Second),
	}

	live := Prune(toasts, now)
	msgs := make([]string, len(live))
	for i, t := range live {
		msgs[i] = t.Message
	}
	assert.Equal(t, []string{"b", "c", "d"}, msgs)
	assert.Equal(t, "old", toasts[0].Message, "input is not modified")
}
