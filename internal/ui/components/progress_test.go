package components

import (
	"testing"

	"charm.land/lipgloss/v2"
)

func TestProgressBar_WidthIsStable(t *testing.T) {
	for _, pct := range []float64{0, 0.33, 0.5, 1, 1.5, -0.2} {
		bar := NewProgressBar("Progress", pct, true, 48)
		if got := lipgloss.Width(bar.View()); got != 48 {
			t.Errorf("width at %.2f = %d, want 48", pct, got)
		}
	}
}

func TestProgressBar_ClampsPercent(t *testing.T) {
	full := NewProgressBar("", 1, false, 20).View()
	if got := NewProgressBar("", 1.5, false, 20).View(); got != full {
		t.Error("overfull percent rendered differently from a full bar")
	}
	empty := NewProgressBar("", 0, false, 20).View()
	if got := NewProgressBar("", -0.2, false, 20).View(); got != empty {
		t.Error("negative percent rendered differently from an empty bar")
	}
}
