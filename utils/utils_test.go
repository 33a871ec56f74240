package utils

import (
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtils_HexToNRGBA(t *testing.T) {
	testCases := []struct {
		hex  string
		want color.NRGBA
	}{
		{"#000000", color.NRGBA{A: 0xff}},
		{"#ff0000", color.NRGBA{R: 0xff, A: 0xff}},
		{"00ff00", color.NRGBA{G: 0xff, A: 0xff}},
		{"#00f", color.NRGBA{B: 0xff, A: 0xff}},
		{"#11223380", color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x80}},
	}
	for _, tc := range testCases {
		t.Run(tc.hex, func(t *testing.T) {
			got, err := HexToNRGBA(tc.hex)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	for _, bad := range []string{"", "#12", "#12345", "#gg0000", "red"} {
		_, err := HexToNRGBA(bad)
		assert.ErrorIs(t, err, ErrInvalidHex, bad)
	}
}

func TestUtils_NRGBAToHex(t *testing.T) {
	assert.Equal(t, "#ff8000", NRGBAToHex(color.NRGBA{R: 0xff, G: 0x80, A: 0xff}))
	assert.Equal(t, "#ff800040", NRGBAToHex(color.NRGBA{R: 0xff, G: 0x80, A: 0x40}))
}

func TestUtils_MinMax(t *testing.T) {
	assert.Equal(t, 1, Min(1, 2))
	assert.Equal(t, 1, Min(2, 1))
	assert.Equal(t, 2.5, Max(2.5, -1))
	assert.Equal(t, 10, Clamp(42, 0, 10))
	assert.Equal(t, 0, Clamp(-3, 0, 10))
}

func TestUtils_DecorateText(t *testing.T) {
	s := DecorateText("done", SuccessMessage)
	assert.True(t, strings.HasPrefix(s, SuccessColor))
	assert.True(t, strings.HasSuffix(s, DefaultColor))
	assert.Equal(t, "x", DecorateText("x", MessageType(99)))
}

func TestUtils_FormatTime(t *testing.T) {
	assert.Equal(t, "1.50s", FormatTime(1500*time.Millisecond))
	assert.Equal(t, "2m 3.00s", FormatTime(2*time.Minute+3*time.Second))
}
