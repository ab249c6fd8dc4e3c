package listings

import (
	"testing"

	"rental-app/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestValidateImages(t *testing.T) {
	assert.NoError(t, ValidateImages(nil, 0))
	assert.NoError(t, ValidateImages(testImages(3), 2))

	err := ValidateImages(testImages(MaxImagesPerListing+1), 0)
	assert.True(t, apperr.Is(err, "VALIDATION_ERROR"))

	err = ValidateImages(testImages(2), 2)
	assert.True(t, apperr.Is(err, "VALIDATION_ERROR"))
	err = ValidateImages(testImages(2), -1)
	assert.True(t, apperr.Is(err, "VALIDATION_ERROR"))

	err = ValidateImages([]ImageUpload{{Data: []byte{1}, ContentType: "image/gif"}}, 0)
	assert.True(t, apperr.Is(err, "VALIDATION_ERROR"))

	big := ImageUpload{Data: make([]byte, MaxImageSizeBytes+1), ContentType: "image/png"}
	err = ValidateImages([]ImageUpload{big}, 0)
	assert.True(t, apperr.Is(err, "VALIDATION_ERROR"))
}

func TestSortOrderFor(t *testing.T) {
	// Cover in the middle: [A, B, C] with cover B becomes B=0, A=1, C=2.
	assert.Equal(t, 1, sortOrderFor(0, 1))
	assert.Equal(t, 0, sortOrderFor(1, 1))
	assert.Equal(t, 2, sortOrderFor(2, 1))

	// Cover already first leaves everything in place.
	for i := 0; i < 4; i++ {
		assert.Equal(t, i, sortOrderFor(i, 0))
	}

	// Cover last: everything before it shifts up by one.
	assert.Equal(t, 1, sortOrderFor(0, 2))
	assert.Equal(t, 2, sortOrderFor(1, 2))
	assert.Equal(t, 0, sortOrderFor(2, 2))
}
