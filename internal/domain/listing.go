// Package domain holds the core entities of the listing platform.
package domain

import "time"

// Variant identifies what kind of asset a listing describes.
type Variant string

const (
	VariantApartment   Variant = "Apartment"
	VariantCondominium Variant = "Condominium"
	VariantVilla       Variant = "Villa"
	VariantBuilding    Variant = "Building"
	VariantPenthouse   Variant = "Penthouse"
	VariantDuplex      Variant = "Duplex"
	VariantCar         Variant = "Car"
)

// PropertyVariants lists the real-estate subtypes, excluding cars.
var PropertyVariants = []Variant{
	VariantApartment,
	VariantCondominium,
	VariantVilla,
	VariantBuilding,
	VariantPenthouse,
	VariantDuplex,
}

// Status is the moderation state of a listing.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusSold     Status = "sold"
	StatusDeleted  Status = "deleted"
)

// CondoScheme is the government condominium payment scheme.
type CondoScheme string

const (
	Scheme2080 CondoScheme = "20/80"
	Scheme4060 CondoScheme = "40/60"
	Scheme1090 CondoScheme = "10/90"
)

// CondoSchemes enumerates all known schemes.
var CondoSchemes = []CondoScheme{Scheme2080, Scheme4060, Scheme1090}

// Furnishing describes how furnished a property is.
type Furnishing string

const (
	Unfurnished    Furnishing = "Unfurnished"
	SemiFurnished  Furnishing = "Semi-furnished"
	FullyFurnished Furnishing = "Fully-furnished"
)

// Furnishings enumerates all furnishing levels.
var Furnishings = []Furnishing{Unfurnished, SemiFurnished, FullyFurnished}

// Transmission is a car gearbox type.
type Transmission string

const (
	TransmissionAutomatic Transmission = "Automatic"
	TransmissionManual    Transmission = "Manual"
)

// Listing is a broker submission, property or car, moving through the
// moderation lifecycle. Subtype-specific attributes are pointers and set
// only when the submission flow collected them for the matching variant.
type Listing struct {
	ID              string  `json:"id"`
	BrokerID        int64   `json:"broker_id"`
	Variant         Variant `json:"variant"`
	Status          Status  `json:"status"`
	RejectionReason string  `json:"rejection_reason,omitempty"`

	PriceETB    float64  `json:"price_etb"`
	ImageRefs   []string `json:"image_refs"`
	Description string   `json:"description"`
	Region      string   `json:"region,omitempty"`

	// Property attributes.
	Scheme          *CondoScheme `json:"scheme,omitempty"`
	Site            *string      `json:"site,omitempty"`
	Bedrooms        *int         `json:"bedrooms,omitempty"`
	Bathrooms       *int         `json:"bathrooms,omitempty"`
	SizeSqm         *float64     `json:"size_sqm,omitempty"`
	Commercial      *bool        `json:"commercial,omitempty"`
	TotalFloors     *int         `json:"total_floors,omitempty"`
	TotalUnits      *int         `json:"total_units,omitempty"`
	Elevator        *bool        `json:"elevator,omitempty"`
	FloorLevel      *int         `json:"floor_level,omitempty"`
	Furnishing      *Furnishing  `json:"furnishing,omitempty"`
	Rooftop         *bool        `json:"rooftop,omitempty"`
	TwoStory        *bool        `json:"two_story,omitempty"`
	PrivateEntrance *bool        `json:"private_entrance,omitempty"`
	TitleDeed       *bool        `json:"title_deed,omitempty"`
	ParkingSpaces   *int         `json:"parking_spaces,omitempty"`

	// Car attributes.
	CarMake         *string       `json:"car_make,omitempty"`
	CarModel        *string       `json:"car_model,omitempty"`
	CarYear         *int          `json:"car_year,omitempty"`
	CarTransmission *Transmission `json:"car_transmission,omitempty"`
	CarMileageKm    *float64      `json:"car_mileage_km,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsCar reports whether the listing describes a vehicle.
func (l *Listing) IsCar() bool {
	return l != nil && l.Variant == VariantCar
}

// Notification is a side-effect command produced by a lifecycle transition.
// The caller is responsible for delivering it; delivery is best effort and
// never rolls back the transition that produced it.
type Notification struct {
	RecipientID int64
	MessageKey  string
	Params      map[string]string
}
