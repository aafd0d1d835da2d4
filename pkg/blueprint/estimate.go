package blueprint

import "github.com/ekaya-inc/ekaya-discovery/pkg/models"

type Size string

const (
	SizeSmall  Size = "Small"
	SizeMedium Size = "Medium"
	SizeLarge  Size = "Large"
)

// Upper bounds (inclusive) of the small and medium buckets.
const (
	smallMaxPoints  = 15
	mediumMaxPoints = 30
)

// Estimate is a t-shirt sizing of the project.
type Estimate struct {
	Points   int    `json:"points" yaml:"points"`
	Size     Size   `json:"size" yaml:"size"`
	Timeline string `json:"timeline" yaml:"timeline"`
}

// EstimateSize scores the record as 3 per entity, 2 per flow and 1 per role.
func EstimateSize(r models.DiscoveryRecord) Estimate {
	points := 3*len(r.Entities) + 2*len(r.Flows) + len(r.Roles)
	switch {
	case points <= smallMaxPoints:
		return Estimate{Points: points, Size: SizeSmall, Timeline: "2-4 weeks"}
	case points <= mediumMaxPoints:
		return Estimate{Points: points, Size: SizeMedium, Timeline: "1-2 months"}
	default:
		return Estimate{Points: points, Size: SizeLarge, Timeline: "3+ months"}
	}
}
