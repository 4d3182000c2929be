package domain

// ListingFilter is a sparse set of query predicates produced by a completed
// filter conversation. Nil fields are omitted from the query entirely; an
// all-nil filter with Status set to approved is the "browse everything" view.
type ListingFilter struct {
	Status        *Status
	Variant       *Variant
	BrokerID      *int64
	MinBedrooms   *int
	Region        *string
	MinPrice      *float64
	MaxPrice      *float64
	Scheme        *CondoScheme
	MinFloorLevel *int
	Commercial    *bool
	Elevator      *bool
}

// ApprovedOnly returns a filter constrained to approved listings, the
// default for any buyer-facing query.
func ApprovedOnly() ListingFilter {
	status := StatusApproved
	return ListingFilter{Status: &status}
}

// IsEmpty reports whether no predicate besides the status view is set.
func (f ListingFilter) IsEmpty() bool {
	return f.Variant == nil &&
		f.BrokerID == nil &&
		f.MinBedrooms == nil &&
		f.Region == nil &&
		f.MinPrice == nil &&
		f.MaxPrice == nil &&
		f.Scheme == nil &&
		f.MinFloorLevel == nil &&
		f.Commercial == nil &&
		f.Elevator == nil
}
