package engine

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shelfworks/planogram/backend-go/internal/domain"
)

// ShelfSlot wraps one physical shelf for the fill pass. AvailableWidth is
// fixed from the section; UsedWidth accumulates as facings land. The ordered
// slot list plus a forward-only cursor are the entire allocation state of a
// run.
type ShelfSlot struct {
	ShelfID         int64
	SectionOrdering int
	ShelfOrdering   int
	AvailableWidth  float64
	UsedWidth       float64
	Depth           float64
}

// Remaining returns the unconsumed linear width of the slot.
func (s *ShelfSlot) Remaining() float64 {
	return s.AvailableWidth - s.UsedWidth
}

// FlattenGondola orders every shelf of the gondola into the single linear
// allocation target: section ordering ascending, then shelf ordering within
// the section. This total order is the backbone invariant of the fill pass.
func FlattenGondola(g domain.Gondola) []ShelfSlot {
	var slots []ShelfSlot
	for _, section := range g.Sections {
		for _, shelf := range section.Shelves {
			slots = append(slots, ShelfSlot{
				ShelfID:         shelf.ID,
				SectionOrdering: section.Ordering,
				ShelfOrdering:   shelf.Ordering,
				AvailableWidth:  shelf.Width,
				UsedWidth:       shelf.OccupiedWidth,
				Depth:           shelf.Depth,
			})
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].SectionOrdering != slots[j].SectionOrdering {
			return slots[i].SectionOrdering < slots[j].SectionOrdering
		}
		return slots[i].ShelfOrdering < slots[j].ShelfOrdering
	})

	return slots
}

// volumePattern matches a trailing package size in a product display name,
// e.g. "Cola Zero 2L", "Shampoo 500ML", "Rice 5KG".
var volumePattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(ML|L|CL|G|KG|GR)\b`)

// packageVolume extracts a comparable package size from a product name,
// normalized to milliliters or grams. Returns 0 when the name carries no
// parseable unit; such products keep their catalog order in tie-breaks.
func packageVolume(name string) float64 {
	matches := volumePattern.FindStringSubmatch(name)
	if matches == nil {
		return 0
	}

	raw := strings.ReplaceAll(matches[1], ",", ".")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}

	switch strings.ToUpper(matches[2]) {
	case "L":
		return value * 1000
	case "CL":
		return value * 10
	case "KG":
		return value * 1000
	default: // ML, G, GR
		return value
	}
}
