package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/addis-listings/dalal-bot/internal/session"
)

func TestValidateChoice(t *testing.T) {
	node := &Node{ID: "entity_type", Kind: KindChoice, Options: []string{"Villa", "Apartment"}}

	testCases := []struct {
		name      string
		event     Event
		wantValue any
		wantErr   string
	}{
		{name: "exact option", event: TextEvent("Villa"), wantValue: "Villa"},
		{name: "callback option", event: CallbackEvent("Apartment"), wantValue: "Apartment"},
		{name: "unknown option", event: TextEvent("Castle"), wantErr: "error.invalid_choice"},
		{name: "case mismatch", event: TextEvent("villa"), wantErr: "error.invalid_choice"},
		{name: "photo at choice node", event: PhotoEvent([]byte{1}, "image/jpeg"), wantErr: "error.invalid_choice"},
		{name: "empty text", event: TextEvent("   "), wantErr: "error.invalid_choice"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			value, err := Validate(node, tc.event, nil)

			if tc.wantErr != "" {
				var invalid *Invalid
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, tc.wantErr, invalid.Reason)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantValue, value)
		})
	}
}

func TestValidateNumber(t *testing.T) {
	node := &Node{ID: "price", Kind: KindNumber}

	testCases := []struct {
		name      string
		text      string
		wantValue float64
		wantErr   bool
	}{
		{name: "plain integer", text: "3", wantValue: 3},
		{name: "decimal", text: "4500000.50", wantValue: 4500000.50},
		{name: "thousands separators", text: "4,500,000", wantValue: 4500000},
		{name: "keyboard plus suffix", text: "6+", wantValue: 6},
		{name: "ground plus floors", text: "G+4", wantValue: 4},
		{name: "lowercase ground plus", text: "g+2", wantValue: 2},
		{name: "negative rejected", text: "-5", wantErr: true},
		{name: "not a number", text: "many", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			value, err := Validate(node, TextEvent(tc.text), nil)

			if tc.wantErr {
				var invalid *Invalid
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, "error.invalid_number", invalid.Reason)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantValue, value)
		})
	}
}

func TestValidateBool(t *testing.T) {
	node := &Node{ID: "title_deed", Kind: KindBool, Options: BoolOptions}

	value, err := Validate(node, TextEvent("Yes"), nil)
	require.NoError(t, err)
	assert.Equal(t, true, value)

	value, err = Validate(node, TextEvent("No"), nil)
	require.NoError(t, err)
	assert.Equal(t, false, value)

	_, err = Validate(node, TextEvent("maybe"), nil)
	var invalid *Invalid
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "error.invalid_choice", invalid.Reason)
}

func TestValidateText(t *testing.T) {
	node := &Node{ID: "description", Kind: KindText}

	value, err := Validate(node, TextEvent("  spacious and bright  "), nil)
	require.NoError(t, err)
	assert.Equal(t, "spacious and bright", value)

	_, err = Validate(node, TextEvent(""), nil)
	var invalid *Invalid
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "error.expected_text", invalid.Reason)
}

func TestValidateAnySentinel(t *testing.T) {
	node := &Node{ID: "f_type", Kind: KindChoice, Options: []string{"Villa", AnySentinel}, AllowAny: true}

	value, err := Validate(node, TextEvent("any"), nil)
	require.NoError(t, err)
	assert.Equal(t, AnySentinel, value)

	// Without AllowAny the sentinel is just another wrong choice.
	strict := &Node{ID: "entity_type", Kind: KindChoice, Options: []string{"Villa"}}
	_, err = Validate(strict, TextEvent("Any"), nil)
	var invalid *Invalid
	require.ErrorAs(t, err, &invalid)
}

func TestValidatePhotos(t *testing.T) {
	node := &Node{ID: "images", Kind: KindPhotos, MinPhotos: 3}

	t.Run("photo accepted", func(t *testing.T) {
		value, err := Validate(node, PhotoEvent([]byte{1, 2}, "image/jpeg"), nil)
		require.NoError(t, err)
		assert.Equal(t, PhotoAccepted{}, value)
	})

	t.Run("done below minimum", func(t *testing.T) {
		prior := session.Answers{}.With("image", "a.jpg").With("image", "b.jpg")

		_, err := Validate(node, TextEvent("done"), prior)
		var invalid *Invalid
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "error.need_more_images", invalid.Reason)
		assert.Equal(t, 2, invalid.Params["count"])
		assert.Equal(t, 1, invalid.Params["remaining"])
	})

	t.Run("done at minimum", func(t *testing.T) {
		prior := session.Answers{}.
			With("image", "a.jpg").
			With("image", "b.jpg").
			With("image", "c.jpg")

		value, err := Validate(node, TextEvent("Done"), prior)
		require.NoError(t, err)
		assert.Equal(t, PhotosDone{Count: 3}, value)
	})

	t.Run("text at photo node", func(t *testing.T) {
		_, err := Validate(node, TextEvent("here you go"), nil)
		var invalid *Invalid
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "error.not_an_image", invalid.Reason)
	})
}
