package migrate

import "github.com/javiermolinar/gridshift/internal/layout"

// hotseatResult is the outcome of a hotseat migration.
type hotseatResult struct {
	Items   []layout.Item // kept items, renumbered
	Dropped []layout.Item
}

// migrateHotseat drops the lightest items until at most slots remain, then
// renumbers the rest to 0..n-1 in their original order.
func migrateHotseat(items []layout.Item, slots int) hotseatResult {
	kept := layout.Clone(items)
	var dropped []layout.Item

	for len(kept) > max(slots, 0) {
		i := lightestHotseatItem(kept)
		dropped = append(dropped, kept[i])
		kept = append(kept[:i], kept[i+1:]...)
	}

	for slot := range kept {
		it := &kept[slot]
		if it.Screen != int64(slot) {
			it.Screen = int64(slot)
			it.CellX = slot
			it.CellY = 0
		}
	}
	return hotseatResult{Items: kept, Dropped: dropped}
}

// lightestHotseatItem starts from the middle item so that, among equally
// light items, the one nearest the middle goes first.
func lightestHotseatItem(items []layout.Item) int {
	pick := len(items) / 2
	for i, it := range items {
		if it.Weight < items[pick].Weight {
			pick = i
		}
	}
	return pick
}
