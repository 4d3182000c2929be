package flow

import (
	"github.com/addis-listings/dalal-bot/internal/domain"
	"github.com/addis-listings/dalal-bot/internal/session"
)

// Filter node ids.
const (
	nodeFilterType       NodeID = "f_type"
	nodeFilterBedrooms   NodeID = "f_bedrooms"
	nodeFilterRegion     NodeID = "f_region"
	nodeFilterPrice      NodeID = "f_price"
	nodeFilterScheme     NodeID = "f_scheme"
	nodeFilterStructure  NodeID = "f_structure"
	nodeFilterCommercial NodeID = "f_commercial"
	nodeFilterElevator   NodeID = "f_elevator"
)

// priceBand is a labeled price range on the filter keyboard.
type priceBand struct {
	Label string
	Min   float64
	Max   float64
}

var priceBands = []priceBand{
	{"Under 5M", 0, 5_000_000},
	{"5M - 10M", 5_000_000, 10_000_000},
	{"10M - 20M", 10_000_000, 20_000_000},
	{"20M - 33M", 20_000_000, 33_000_000},
	{"Above 33M", 33_000_000, 9_999_999_999},
}

var regions = []string{"Addis Ababa", "Amhara", "Oromia", "Other"}

func withAny(options []string) []string {
	out := make([]string, 0, len(options)+1)
	out = append(out, options...)
	return append(out, AnySentinel)
}

func priceBandLabels() []string {
	labels := make([]string, 0, len(priceBands))
	for _, band := range priceBands {
		labels = append(labels, band.Label)
	}
	return labels
}

func filteredVariant(a session.Answers) (domain.Variant, bool) {
	v, ok := a.GetString(string(nodeFilterType))
	return domain.Variant(v), ok
}

// FilterGraph builds the buyer search flow. Every node accepts "Any",
// which omits the predicate; branching mirrors the submission subtypes.
func FilterGraph() *Graph {
	to := func(id NodeID) NextFunc {
		return func(session.Answers) NodeID { return id }
	}

	return newGraph(session.FlowFilter, nodeFilterType, triggerMatch(TriggerFilter),
		&Node{
			ID: nodeFilterType, PromptKey: "prompt.filter_type", Kind: KindChoice,
			Options: withAny(variantOptions()), AllowAny: true,
			Next: func(a session.Answers) NodeID {
				// The car filter is just type and price.
				if v, ok := filteredVariant(a); ok && v == domain.VariantCar {
					return nodeFilterPrice
				}
				return nodeFilterBedrooms
			},
		},
		&Node{
			ID: nodeFilterBedrooms, PromptKey: "prompt.filter_bedrooms", Kind: KindNumber,
			Options: withAny(bedroomOptions), AllowAny: true,
			Next: to(nodeFilterRegion),
		},
		&Node{
			ID: nodeFilterRegion, PromptKey: "prompt.filter_region", Kind: KindChoice,
			Options: withAny(regions), AllowAny: true,
			Next: to(nodeFilterPrice),
		},
		&Node{
			ID: nodeFilterPrice, PromptKey: "prompt.filter_price", Kind: KindChoice,
			Options: withAny(priceBandLabels()), AllowAny: true,
			Next: func(a session.Answers) NodeID {
				v, ok := filteredVariant(a)
				if !ok {
					return NodeComplete
				}
				switch v {
				case domain.VariantCondominium:
					return nodeFilterScheme
				case domain.VariantVilla:
					return nodeFilterStructure
				case domain.VariantBuilding:
					return nodeFilterCommercial
				default:
					return NodeComplete
				}
			},
		},
		&Node{
			ID: nodeFilterScheme, PromptKey: "prompt.filter_scheme", Kind: KindChoice,
			Options: withAny(schemeOptions()), AllowAny: true,
			Next: to(NodeComplete),
		},
		&Node{
			ID: nodeFilterStructure, PromptKey: "prompt.filter_structure", Kind: KindNumber,
			AllowAny: true,
			Next:     to(NodeComplete),
		},
		&Node{
			ID: nodeFilterCommercial, PromptKey: "prompt.filter_commercial", Kind: KindBool,
			Options: withAny(BoolOptions), AllowAny: true,
			Next: to(nodeFilterElevator),
		},
		&Node{
			ID: nodeFilterElevator, PromptKey: "prompt.filter_elevator", Kind: KindBool,
			Options: withAny(BoolOptions), AllowAny: true,
			Next: to(NodeComplete),
		},
	)
}

// CompileFilter converts a completed filter conversation into query
// predicates. Fields the user answered "Any" to were never stored, so
// they stay unset; the status predicate is always approved for the buyer
// view.
func CompileFilter(a session.Answers) domain.ListingFilter {
	f := domain.ApprovedOnly()

	if v, ok := filteredVariant(a); ok {
		f.Variant = &v
	}
	if n, ok := a.GetInt(string(nodeFilterBedrooms)); ok {
		f.MinBedrooms = &n
	}
	if region, ok := a.GetString(string(nodeFilterRegion)); ok {
		f.Region = &region
	}
	if label, ok := a.GetString(string(nodeFilterPrice)); ok {
		for _, band := range priceBands {
			if band.Label == label {
				minPrice, maxPrice := band.Min, band.Max
				f.MinPrice = &minPrice
				f.MaxPrice = &maxPrice
				break
			}
		}
	}
	if s, ok := a.GetString(string(nodeFilterScheme)); ok {
		scheme := domain.CondoScheme(s)
		f.Scheme = &scheme
	}
	if n, ok := a.GetInt(string(nodeFilterStructure)); ok {
		f.MinFloorLevel = &n
	}
	if b, ok := a.GetBool(string(nodeFilterCommercial)); ok {
		f.Commercial = &b
	}
	if b, ok := a.GetBool(string(nodeFilterElevator)); ok {
		f.Elevator = &b
	}

	return f
}
