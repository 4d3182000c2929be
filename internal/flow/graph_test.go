package flow

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/addis-listings/dalal-bot/internal/domain"
	"github.com/addis-listings/dalal-bot/internal/session"
)

// walkSubmission drives the submission graph to completion for one subtype,
// answering every node through the real validator, and returns the visited
// node ids in order.
func walkSubmission(t *testing.T, variant domain.Variant) ([]NodeID, session.Answers) {
	t.Helper()

	g := SubmissionGraph()
	answers := session.Answers{}
	id := g.Start

	var visited []NodeID
	for steps := 0; id != NodeComplete; steps++ {
		if steps > 50 {
			t.Fatalf("submission walk for %s did not terminate, visited %v", variant, visited)
		}

		node := g.Node(id)
		require.NotNil(t, node, "walk reached unknown node %q", id)
		visited = append(visited, id)

		if node.Kind == KindPhotos {
			for i := 0; i < node.MinPhotos; i++ {
				value, err := Validate(node, PhotoEvent([]byte{0x1}, "image/jpeg"), answers)
				require.NoError(t, err)
				require.Equal(t, PhotoAccepted{}, value)
				answers = answers.With(imageField, fmt.Sprintf("ref-%d", i))
			}
			_, err := Validate(node, TextEvent("done"), answers)
			require.NoError(t, err)
		} else {
			value, err := Validate(node, submissionEventFor(node, variant), answers)
			require.NoError(t, err, "node %q rejected its canonical answer", id)
			answers = answers.With(node.field(), value)
		}

		id = node.Next(answers)
	}

	return visited, answers
}

func submissionEventFor(node *Node, variant domain.Variant) Event {
	if node.ID == nodeEntityType {
		return TextEvent(string(variant))
	}

	switch node.Kind {
	case KindChoice:
		return TextEvent(node.Options[0])
	case KindBool:
		return TextEvent(BoolYes)
	case KindNumber:
		return TextEvent("2")
	default:
		return TextEvent("sample answer")
	}
}

func TestSubmissionGraphPaths(t *testing.T) {
	common := []NodeID{nodePrice, nodeImages, nodeDescription}

	testCases := []struct {
		variant domain.Variant
		want    []NodeID
	}{
		{
			variant: domain.VariantVilla,
			want: []NodeID{nodeEntityType, nodeBedrooms, nodeBathrooms, nodeSize,
				nodeFloorLevel, nodeFurnishing, nodeTitleDeed, nodeParkingSpaces, nodeRegion},
		},
		{
			variant: domain.VariantPenthouse,
			want: []NodeID{nodeEntityType, nodeBedrooms, nodeBathrooms, nodeSize,
				nodeFloorLevel, nodeFurnishing, nodeHasRooftop, nodeIsTwoStory,
				nodeTitleDeed, nodeParkingSpaces, nodeRegion},
		},
		{
			variant: domain.VariantDuplex,
			want: []NodeID{nodeEntityType, nodeBedrooms, nodeBathrooms, nodeSize,
				nodeFloorLevel, nodeFurnishing, nodePrivateEntrance,
				nodeTitleDeed, nodeParkingSpaces, nodeRegion},
		},
		{
			variant: domain.VariantCondominium,
			want: []NodeID{nodeEntityType, nodeScheme, nodeSite, nodeBedrooms,
				nodeBathrooms, nodeSize, nodeFloorLevel, nodeFurnishing,
				nodeTitleDeed, nodeParkingSpaces, nodeRegion},
		},
		{
			variant: domain.VariantApartment,
			want: []NodeID{nodeEntityType, nodeSite, nodeBedrooms, nodeBathrooms,
				nodeSize, nodeFloorLevel, nodeFurnishing, nodeTitleDeed,
				nodeParkingSpaces, nodeRegion},
		},
		{
			variant: domain.VariantBuilding,
			want: []NodeID{nodeEntityType, nodeIsCommercial, nodeTotalFloors,
				nodeTotalUnits, nodeHasElevator, nodeSize, nodeFurnishing,
				nodeTitleDeed, nodeParkingSpaces, nodeRegion},
		},
		{
			variant: domain.VariantCar,
			want: []NodeID{nodeEntityType, nodeCarMake, nodeCarModel, nodeCarYear,
				nodeCarTransmission, nodeCarMileage},
		},
	}

	for _, tc := range testCases {
		t.Run(string(tc.variant), func(t *testing.T) {
			visited, _ := walkSubmission(t, tc.variant)
			assert.Equal(t, append(tc.want, common...), visited)
		})
	}
}

func TestSubmissionGraphTriggers(t *testing.T) {
	g := SubmissionGraph()

	_, ok := g.Match(TextEvent(TriggerSubmit))
	assert.True(t, ok)

	_, ok = g.Match(CallbackEvent(TriggerSubmit))
	assert.True(t, ok)

	_, ok = g.Match(TextEvent("hello"))
	assert.False(t, ok)
}

func TestAssembleListing(t *testing.T) {
	t.Run("villa", func(t *testing.T) {
		answers := session.Answers{}.
			With("entity_type", "Villa").
			With("bedrooms", float64(3)).
			With("bathrooms", float64(2)).
			With("size", "50-100").
			With("floor_level", float64(2)).
			With("furnishing", "Semi-furnished").
			With("title_deed", true).
			With("parking_spaces", float64(1)).
			With("region", "Addis Ababa").
			With("price", float64(12_000_000)).
			With(imageField, "a.jpg").
			With(imageField, "b.jpg").
			With(imageField, "c.jpg").
			With("description", "quiet compound")

		l := AssembleListing(42, answers)

		assert.Equal(t, int64(42), l.BrokerID)
		assert.Equal(t, domain.VariantVilla, l.Variant)
		assert.Equal(t, domain.StatusPending, l.Status)
		assert.Equal(t, float64(12_000_000), l.PriceETB)
		assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, l.ImageRefs)
		assert.Equal(t, "quiet compound", l.Description)
		assert.Equal(t, "Addis Ababa", l.Region)

		require.NotNil(t, l.Bedrooms)
		assert.Equal(t, 3, *l.Bedrooms)
		require.NotNil(t, l.SizeSqm)
		assert.Equal(t, float64(75), *l.SizeSqm)
		require.NotNil(t, l.Furnishing)
		assert.Equal(t, domain.SemiFurnished, *l.Furnishing)
		require.NotNil(t, l.TitleDeed)
		assert.True(t, *l.TitleDeed)

		// Nothing from the other branches leaks in.
		assert.Nil(t, l.Scheme)
		assert.Nil(t, l.Commercial)
		assert.Nil(t, l.Rooftop)
		assert.Nil(t, l.CarMake)
	})

	t.Run("car", func(t *testing.T) {
		answers := session.Answers{}.
			With("entity_type", "Car").
			With("car_make", "Toyota").
			With("car_model", "Corolla").
			With("car_year", float64(2018)).
			With("car_transmission", "Automatic").
			With("car_mileage", float64(86000)).
			With("price", float64(2_400_000)).
			With(imageField, "a.jpg").
			With(imageField, "b.jpg").
			With(imageField, "c.jpg").
			With("description", "single owner")

		l := AssembleListing(7, answers)

		assert.Equal(t, domain.VariantCar, l.Variant)
		assert.True(t, l.IsCar())
		require.NotNil(t, l.CarMake)
		assert.Equal(t, "Toyota", *l.CarMake)
		require.NotNil(t, l.CarYear)
		assert.Equal(t, 2018, *l.CarYear)
		require.NotNil(t, l.CarTransmission)
		assert.Equal(t, domain.TransmissionAutomatic, *l.CarTransmission)
		require.NotNil(t, l.CarMileageKm)
		assert.Equal(t, float64(86000), *l.CarMileageKm)

		assert.Nil(t, l.Bedrooms)
		assert.Nil(t, l.SizeSqm)
		assert.Empty(t, l.Region)
	})
}

// TestRegionRoundTrip pins that a region collected during submission is
// matchable by the region predicate a buyer's filter compiles to.
func TestRegionRoundTrip(t *testing.T) {
	_, answers := walkSubmission(t, domain.VariantVilla)
	l := AssembleListing(42, answers)
	require.NotEmpty(t, l.Region)

	_, filterAnswers := walkFilter(t, map[NodeID]string{nodeFilterRegion: l.Region})
	f := CompileFilter(filterAnswers)

	require.NotNil(t, f.Region)
	assert.Equal(t, l.Region, *f.Region)
}

// walkFilter drives the filter graph with the given answers, using "Any"
// for every node not listed.
func walkFilter(t *testing.T, chosen map[NodeID]string) ([]NodeID, session.Answers) {
	t.Helper()

	g := FilterGraph()
	answers := session.Answers{}
	id := g.Start

	var visited []NodeID
	for steps := 0; id != NodeComplete; steps++ {
		if steps > 20 {
			t.Fatalf("filter walk did not terminate, visited %v", visited)
		}

		node := g.Node(id)
		require.NotNil(t, node, "walk reached unknown node %q", id)
		visited = append(visited, id)

		text, ok := chosen[id]
		if !ok {
			text = AnySentinel
		}

		value, err := Validate(node, TextEvent(text), answers)
		require.NoError(t, err, "node %q rejected %q", id, text)

		if !(node.AllowAny && value == AnySentinel) {
			answers = answers.With(node.field(), value)
		}

		id = node.Next(answers)
	}

	return visited, answers
}

func TestFilterGraphPaths(t *testing.T) {
	testCases := []struct {
		name   string
		chosen map[NodeID]string
		want   []NodeID
	}{
		{
			name:   "any everywhere",
			chosen: nil,
			want:   []NodeID{nodeFilterType, nodeFilterBedrooms, nodeFilterRegion, nodeFilterPrice},
		},
		{
			name:   "car shortcut",
			chosen: map[NodeID]string{nodeFilterType: "Car"},
			want:   []NodeID{nodeFilterType, nodeFilterPrice},
		},
		{
			name:   "condominium asks scheme",
			chosen: map[NodeID]string{nodeFilterType: "Condominium"},
			want: []NodeID{nodeFilterType, nodeFilterBedrooms, nodeFilterRegion,
				nodeFilterPrice, nodeFilterScheme},
		},
		{
			name:   "villa asks structure",
			chosen: map[NodeID]string{nodeFilterType: "Villa"},
			want: []NodeID{nodeFilterType, nodeFilterBedrooms, nodeFilterRegion,
				nodeFilterPrice, nodeFilterStructure},
		},
		{
			name:   "building asks commercial and elevator",
			chosen: map[NodeID]string{nodeFilterType: "Building"},
			want: []NodeID{nodeFilterType, nodeFilterBedrooms, nodeFilterRegion,
				nodeFilterPrice, nodeFilterCommercial, nodeFilterElevator},
		},
		{
			name:   "apartment ends at price",
			chosen: map[NodeID]string{nodeFilterType: "Apartment"},
			want:   []NodeID{nodeFilterType, nodeFilterBedrooms, nodeFilterRegion, nodeFilterPrice},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			visited, _ := walkFilter(t, tc.chosen)
			assert.Equal(t, tc.want, visited)
		})
	}
}

func TestCompileFilter(t *testing.T) {
	t.Run("any everywhere keeps only the status view", func(t *testing.T) {
		_, answers := walkFilter(t, nil)

		f := CompileFilter(answers)

		assert.True(t, f.IsEmpty())
		require.NotNil(t, f.Status)
		assert.Equal(t, domain.StatusApproved, *f.Status)
	})

	t.Run("condominium with every predicate", func(t *testing.T) {
		_, answers := walkFilter(t, map[NodeID]string{
			nodeFilterType:     "Condominium",
			nodeFilterBedrooms: "3",
			nodeFilterRegion:   "Addis Ababa",
			nodeFilterPrice:    "5M - 10M",
			nodeFilterScheme:   "20/80",
		})

		f := CompileFilter(answers)

		require.NotNil(t, f.Status)
		assert.Equal(t, domain.StatusApproved, *f.Status)
		require.NotNil(t, f.Variant)
		assert.Equal(t, domain.VariantCondominium, *f.Variant)
		require.NotNil(t, f.MinBedrooms)
		assert.Equal(t, 3, *f.MinBedrooms)
		require.NotNil(t, f.Region)
		assert.Equal(t, "Addis Ababa", *f.Region)
		require.NotNil(t, f.MinPrice)
		assert.Equal(t, float64(5_000_000), *f.MinPrice)
		require.NotNil(t, f.MaxPrice)
		assert.Equal(t, float64(10_000_000), *f.MaxPrice)
		require.NotNil(t, f.Scheme)
		assert.Equal(t, domain.Scheme2080, *f.Scheme)
		assert.Nil(t, f.Commercial)
		assert.Nil(t, f.Elevator)
	})

	t.Run("villa structure becomes a floor predicate", func(t *testing.T) {
		_, answers := walkFilter(t, map[NodeID]string{
			nodeFilterType:      "Villa",
			nodeFilterStructure: "G+2",
		})

		f := CompileFilter(answers)

		require.NotNil(t, f.MinFloorLevel)
		assert.Equal(t, 2, *f.MinFloorLevel)
	})
}

func TestModerationGraphMatch(t *testing.T) {
	g := ModerationGraph()

	t.Run("reject callback seeds listing id", func(t *testing.T) {
		seed, ok := g.Match(CallbackEvent("reject:abc-123"))
		require.True(t, ok)

		id, found := seed.GetString(listingIDField)
		require.True(t, found)
		assert.Equal(t, "abc-123", id)
	})

	t.Run("empty id does not match", func(t *testing.T) {
		_, ok := g.Match(CallbackEvent("reject:"))
		assert.False(t, ok)
	})

	t.Run("text never matches", func(t *testing.T) {
		_, ok := g.Match(TextEvent("reject:abc-123"))
		assert.False(t, ok)
	})
}
