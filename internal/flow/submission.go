package flow

import (
	"github.com/addis-listings/dalal-bot/internal/domain"
	"github.com/addis-listings/dalal-bot/internal/session"
)

// Canonical trigger values the transport sends to start or cancel flows.
const (
	TriggerSubmit       = "submit_listing"
	TriggerFilter       = "filter_listings"
	TriggerCancel       = "cancel"
	TriggerRejectPrefix = "reject:"
)

// Submission node ids. The field name under which the answer is stored
// equals the node id except for the photo loop, which appends one "image"
// entry per accepted photo.
const (
	nodeEntityType      NodeID = "entity_type"
	nodeScheme          NodeID = "scheme"
	nodeSite            NodeID = "site"
	nodeBedrooms        NodeID = "bedrooms"
	nodeBathrooms       NodeID = "bathrooms"
	nodeSize            NodeID = "size"
	nodeIsCommercial    NodeID = "is_commercial"
	nodeTotalFloors     NodeID = "total_floors"
	nodeTotalUnits      NodeID = "total_units"
	nodeHasElevator     NodeID = "has_elevator"
	nodeFloorLevel      NodeID = "floor_level"
	nodeFurnishing      NodeID = "furnishing"
	nodeHasRooftop      NodeID = "has_rooftop"
	nodeIsTwoStory      NodeID = "is_two_story"
	nodePrivateEntrance NodeID = "has_private_entrance"
	nodeTitleDeed       NodeID = "title_deed"
	nodeParkingSpaces   NodeID = "parking_spaces"
	nodeRegion          NodeID = "region"
	nodePrice           NodeID = "price"
	nodeImages          NodeID = "images"
	nodeDescription     NodeID = "description"

	nodeCarMake         NodeID = "car_make"
	nodeCarModel        NodeID = "car_model"
	nodeCarYear         NodeID = "car_year"
	nodeCarTransmission NodeID = "car_transmission"
	nodeCarMileage      NodeID = "car_mileage"
)

const imageField = "image"

const minListingPhotos = 3

// sizeRanges maps the size keyboard labels to the midpoint square meters
// stored on the listing.
var sizeRanges = map[string]float64{
	"Under 50":  45,
	"50-100":    75,
	"101-150":   125,
	"151-250":   200,
	"Above 250": 300,
}

var sizeOptions = []string{"Under 50", "50-100", "101-150", "151-250", "Above 250"}

var bedroomOptions = []string{"1", "2", "3", "4", "5", "6+"}
var bathroomOptions = []string{"1", "2", "3", "4+"}

func variantOptions() []string {
	opts := make([]string, 0, len(domain.PropertyVariants)+1)
	for _, v := range domain.PropertyVariants {
		opts = append(opts, string(v))
	}
	return append(opts, string(domain.VariantCar))
}

func schemeOptions() []string {
	opts := make([]string, 0, len(domain.CondoSchemes))
	for _, s := range domain.CondoSchemes {
		opts = append(opts, string(s))
	}
	return opts
}

func furnishingOptions() []string {
	opts := make([]string, 0, len(domain.Furnishings))
	for _, f := range domain.Furnishings {
		opts = append(opts, string(f))
	}
	return opts
}

func submittedVariant(a session.Answers) domain.Variant {
	v, _ := a.GetString(string(nodeEntityType))
	return domain.Variant(v)
}

// SubmissionGraph builds the broker intake flow. One root branch on the
// entity subtype, independent mid-flow branches, and a mandatory merge
// into the common suffix price -> images -> description. Property
// branches pass through region just before the merge; cars skip it.
func SubmissionGraph() *Graph {
	to := func(id NodeID) NextFunc {
		return func(session.Answers) NodeID { return id }
	}

	return newGraph(session.FlowSubmission, nodeEntityType, triggerMatch(TriggerSubmit),
		&Node{
			ID:        nodeEntityType,
			PromptKey: "prompt.entity_type",
			Kind:      KindChoice,
			Options:   variantOptions(),
			Next: func(a session.Answers) NodeID {
				switch submittedVariant(a) {
				case domain.VariantCondominium:
					return nodeScheme
				case domain.VariantApartment:
					return nodeSite
				case domain.VariantBuilding:
					return nodeIsCommercial
				case domain.VariantCar:
					return nodeCarMake
				default: // Villa, Penthouse, Duplex
					return nodeBedrooms
				}
			},
		},

		// Condominium prefix.
		&Node{ID: nodeScheme, PromptKey: "prompt.scheme", Kind: KindChoice, Options: schemeOptions(), Next: to(nodeSite)},
		&Node{
			ID: nodeSite, PromptKey: "prompt.site", Kind: KindText,
			Next: func(a session.Answers) NodeID { return nodeBedrooms },
		},

		// Residential middle.
		&Node{ID: nodeBedrooms, PromptKey: "prompt.bedrooms", Kind: KindNumber, Options: bedroomOptions, Next: to(nodeBathrooms)},
		&Node{ID: nodeBathrooms, PromptKey: "prompt.bathrooms", Kind: KindNumber, Options: bathroomOptions, Next: to(nodeSize)},

		// Building branch skips bedrooms/bathrooms entirely.
		&Node{ID: nodeIsCommercial, PromptKey: "prompt.is_commercial", Kind: KindBool, Options: BoolOptions, Next: to(nodeTotalFloors)},
		&Node{ID: nodeTotalFloors, PromptKey: "prompt.total_floors", Kind: KindNumber, Next: to(nodeTotalUnits)},
		&Node{ID: nodeTotalUnits, PromptKey: "prompt.total_units", Kind: KindNumber, Next: to(nodeHasElevator)},
		&Node{ID: nodeHasElevator, PromptKey: "prompt.has_elevator", Kind: KindBool, Options: BoolOptions, Next: to(nodeSize)},

		&Node{
			ID: nodeSize, PromptKey: "prompt.size", Kind: KindChoice, Options: sizeOptions,
			Next: func(a session.Answers) NodeID {
				// A building already answered total floors.
				if submittedVariant(a) == domain.VariantBuilding {
					return nodeFurnishing
				}
				return nodeFloorLevel
			},
		},
		&Node{ID: nodeFloorLevel, PromptKey: "prompt.floor_level", Kind: KindNumber, Next: to(nodeFurnishing)},
		&Node{
			ID: nodeFurnishing, PromptKey: "prompt.furnishing", Kind: KindChoice, Options: furnishingOptions(),
			Next: func(a session.Answers) NodeID {
				switch submittedVariant(a) {
				case domain.VariantPenthouse:
					return nodeHasRooftop
				case domain.VariantDuplex:
					return nodePrivateEntrance
				default:
					return nodeTitleDeed
				}
			},
		},
		&Node{ID: nodeHasRooftop, PromptKey: "prompt.has_rooftop", Kind: KindBool, Options: BoolOptions, Next: to(nodeIsTwoStory)},
		&Node{ID: nodeIsTwoStory, PromptKey: "prompt.is_two_story", Kind: KindBool, Options: BoolOptions, Next: to(nodeTitleDeed)},
		&Node{ID: nodePrivateEntrance, PromptKey: "prompt.has_private_entrance", Kind: KindBool, Options: BoolOptions, Next: to(nodeTitleDeed)},
		&Node{ID: nodeTitleDeed, PromptKey: "prompt.title_deed", Kind: KindBool, Options: BoolOptions, Next: to(nodeParkingSpaces)},
		&Node{ID: nodeParkingSpaces, PromptKey: "prompt.parking_spaces", Kind: KindNumber, Next: to(nodeRegion)},
		&Node{ID: nodeRegion, PromptKey: "prompt.region", Kind: KindChoice, Options: regions, Next: to(nodePrice)},

		// Car branch, merging into the common suffix at price.
		&Node{ID: nodeCarMake, PromptKey: "prompt.car_make", Kind: KindText, Next: to(nodeCarModel)},
		&Node{ID: nodeCarModel, PromptKey: "prompt.car_model", Kind: KindText, Next: to(nodeCarYear)},
		&Node{ID: nodeCarYear, PromptKey: "prompt.car_year", Kind: KindNumber, Next: to(nodeCarTransmission)},
		&Node{
			ID: nodeCarTransmission, PromptKey: "prompt.car_transmission", Kind: KindChoice,
			Options: []string{string(domain.TransmissionAutomatic), string(domain.TransmissionManual)},
			Next:    to(nodeCarMileage),
		},
		&Node{ID: nodeCarMileage, PromptKey: "prompt.car_mileage", Kind: KindNumber, Next: to(nodePrice)},

		// Common suffix.
		&Node{ID: nodePrice, PromptKey: "prompt.price", Kind: KindNumber, Next: to(nodeImages)},
		&Node{ID: nodeImages, PromptKey: "prompt.images", Kind: KindPhotos, MinPhotos: minListingPhotos, Next: to(nodeDescription)},
		&Node{ID: nodeDescription, PromptKey: "prompt.description", Kind: KindText, Next: to(NodeComplete)},
	)
}

// AssembleListing builds a pending listing draft from a completed
// submission. Only fields the subtype's branch actually collected are set.
func AssembleListing(brokerID int64, a session.Answers) *domain.Listing {
	l := &domain.Listing{
		BrokerID:  brokerID,
		Variant:   submittedVariant(a),
		Status:    domain.StatusPending,
		ImageRefs: a.Strings(imageField),
	}

	if price, ok := a.GetFloat(string(nodePrice)); ok {
		l.PriceETB = price
	}
	if desc, ok := a.GetString(string(nodeDescription)); ok {
		l.Description = desc
	}
	if region, ok := a.GetString(string(nodeRegion)); ok {
		l.Region = region
	}

	if s, ok := a.GetString(string(nodeScheme)); ok {
		scheme := domain.CondoScheme(s)
		l.Scheme = &scheme
	}
	if site, ok := a.GetString(string(nodeSite)); ok {
		l.Site = &site
	}
	if n, ok := a.GetInt(string(nodeBedrooms)); ok {
		l.Bedrooms = &n
	}
	if n, ok := a.GetInt(string(nodeBathrooms)); ok {
		l.Bathrooms = &n
	}
	if label, ok := a.GetString(string(nodeSize)); ok {
		if sqm, known := sizeRanges[label]; known {
			l.SizeSqm = &sqm
		}
	}
	if b, ok := a.GetBool(string(nodeIsCommercial)); ok {
		l.Commercial = &b
	}
	if n, ok := a.GetInt(string(nodeTotalFloors)); ok {
		l.TotalFloors = &n
	}
	if n, ok := a.GetInt(string(nodeTotalUnits)); ok {
		l.TotalUnits = &n
	}
	if b, ok := a.GetBool(string(nodeHasElevator)); ok {
		l.Elevator = &b
	}
	if n, ok := a.GetInt(string(nodeFloorLevel)); ok {
		l.FloorLevel = &n
	}
	if f, ok := a.GetString(string(nodeFurnishing)); ok {
		furnishing := domain.Furnishing(f)
		l.Furnishing = &furnishing
	}
	if b, ok := a.GetBool(string(nodeHasRooftop)); ok {
		l.Rooftop = &b
	}
	if b, ok := a.GetBool(string(nodeIsTwoStory)); ok {
		l.TwoStory = &b
	}
	if b, ok := a.GetBool(string(nodePrivateEntrance)); ok {
		l.PrivateEntrance = &b
	}
	if b, ok := a.GetBool(string(nodeTitleDeed)); ok {
		l.TitleDeed = &b
	}
	if n, ok := a.GetInt(string(nodeParkingSpaces)); ok {
		l.ParkingSpaces = &n
	}

	if make_, ok := a.GetString(string(nodeCarMake)); ok {
		l.CarMake = &make_
	}
	if model, ok := a.GetString(string(nodeCarModel)); ok {
		l.CarModel = &model
	}
	if year, ok := a.GetInt(string(nodeCarYear)); ok {
		l.CarYear = &year
	}
	if tr, ok := a.GetString(string(nodeCarTransmission)); ok {
		transmission := domain.Transmission(tr)
		l.CarTransmission = &transmission
	}
	if km, ok := a.GetFloat(string(nodeCarMileage)); ok {
		l.CarMileageKm = &km
	}

	return l
}
