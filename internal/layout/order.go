package layout

import "sort"

// Less orders items for placement: all widgets before all other items,
// larger widgets first, then remaining items by descending weight.
func Less(a, b Item) bool {
	switch {
	case a.IsWidget() && b.IsWidget():
		return a.Area() > b.Area()
	case a.IsWidget():
		return true
	case b.IsWidget():
		return false
	default:
		return a.Weight > b.Weight
	}
}

// SortForPlacement sorts items in place using Less. The sort is stable so
// equal items keep their load order and migrations stay reproducible.
func SortForPlacement(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return Less(items[i], items[j])
	})
}

// IsSortedForPlacement reports whether items are already in placement order.
func IsSortedForPlacement(items []Item) bool {
	return sort.SliceIsSorted(items, func(i, j int) bool {
		return Less(items[i], items[j])
	})
}

// Clone returns a copy of items. Items are plain values, so the copy can be
// mutated without touching the source slice.
func Clone(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
