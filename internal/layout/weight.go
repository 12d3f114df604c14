package layout

import "math"

// Weights for the cost of losing an item. Larger is more costly to drop.
const (
	WeightShortcut      = 1.0
	WeightApplication   = 0.8
	WeightWidgetMin     = 2.0
	WeightWidgetFactor  = 0.6
	WeightFolderFactor  = 0.5
	DefaultWidgetMinDim = 2
)

// ComputeWeight returns the weight of an item. validChildren is only used for
// folders and is the number of folder items that passed validation.
func ComputeWeight(it Item, validChildren int) float64 {
	switch it.Kind {
	case KindShortcut, KindDeepShortcut:
		return WeightShortcut
	case KindApplication:
		return WeightApplication
	case KindFolder:
		return WeightFolderFactor * float64(validChildren)
	case KindWidget:
		return math.Max(WeightWidgetMin, WeightWidgetFactor*float64(it.SpanX*it.SpanY))
	default:
		return 0
	}
}

// NormalizeMinSpan fills in the minimum span of an item. Non-widgets cannot
// shrink. Widgets with an unknown minimum are assumed to shrink to 2x2, never
// below 1 and never above their current span.
func NormalizeMinSpan(it *Item) {
	if it.Kind != KindWidget {
		it.MinSpanX, it.MinSpanY = it.SpanX, it.SpanY
		return
	}
	if it.MinSpanX <= 0 {
		it.MinSpanX = DefaultWidgetMinDim
	}
	if it.MinSpanY <= 0 {
		it.MinSpanY = DefaultWidgetMinDim
	}
	it.MinSpanX = clamp(it.MinSpanX, 1, it.SpanX)
	it.MinSpanY = clamp(it.MinSpanY, 1, it.SpanY)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
