package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderScoreBar renders score/limit as a bar like [████░░░░] 45.
// Green above two thirds, yellow above one third, red below.
func RenderScoreBar(score, limit float64, width int) string {
	pct := 0.0
	if limit > 0 {
		pct = min(max(score/limit, 0), 1)
	}
	width = max(width, 2)

	filled := min(int(pct*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct < 0.33:
		style = StyleRed
	case pct < 0.66:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f", style.Render(bar), score)
}
