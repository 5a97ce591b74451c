package engine

import (
	"math"

	"github.com/shelfworks/planogram/backend-go/internal/domain"
)

// FacingResult carries a computed facing count and whether the product had to
// be capped at one facing because it is deeper than the shelf.
type FacingResult struct {
	Facing        int
	DepthOverflow bool
}

// Facing converts a target stock into the number of frontal slots needed on a
// shelf of the given depth. A product deeper than the shelf still gets one
// facing, flagged as depth overflow, so it is not silently dropped from the
// layout.
func Facing(product domain.Product, targetStock int, shelfDepth float64) FacingResult {
	unitsPerRow := int(math.Floor(shelfDepth / product.Depth))
	if unitsPerRow == 0 {
		return FacingResult{Facing: 1, DepthOverflow: true}
	}

	facing := int(math.Ceil(float64(targetStock) / float64(unitsPerRow)))
	if facing < 1 {
		facing = 1
	}
	return FacingResult{Facing: facing}
}

// AdjustToFit caps an ideal facing to what the available linear width can
// hold. Zero means the product does not fit at all; that outcome must reach
// the caller as a placement failure, never be bumped back up to one.
func AdjustToFit(product domain.Product, idealFacing int, availableWidth float64) int {
	maxFacing := int(math.Floor(availableWidth / product.Width))
	if maxFacing < 0 {
		maxFacing = 0
	}
	if idealFacing < maxFacing {
		return idealFacing
	}
	return maxFacing
}
