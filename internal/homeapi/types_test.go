package homeapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeviceOn(t *testing.T) {
	assert.True(t, Device{OnOff: "On"}.On())
	assert.True(t, Device{OnOff: " on "}.On())
	assert.False(t, Device{OnOff: "Off"}.On())
	assert.False(t, Device{}.On())
}

func TestFormatPower(t *testing.T) {
	assert.Equal(t, "On", FormatPower(true))
	assert.Equal(t, "Off", FormatPower(false))
}
