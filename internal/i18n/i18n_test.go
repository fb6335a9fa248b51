package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBundleHasSameKeysEverywhere(t *testing.T) {
	b := Default()
	assert.Equal(t, []string{"en", "ms", "zh"}, b.Supported())

	for key := range b.dict["en"] {
		for _, lang := range b.Supported() {
			_, ok := b.dict[lang][key]
			assert.True(t, ok, "%s missing key %s", lang, key)
		}
	}
}

func TestLookupFallsBack(t *testing.T) {
	fsys := fstest.MapFS{
		"l/en.json": {Data: []byte(`{"online":"Online","only_en":"English"}`)},
		"l/ms.json": {Data: []byte(`{"online":"Dalam Talian"}`)},
	}
	b, err := Load(fsys, "l", "en", nil)
	require.NoError(t, err)

	assert.Equal(t, "Dalam Talian", b.T("ms", "online"))
	assert.Equal(t, "English", b.T("ms", "only_en"))
	assert.Equal(t, "Online", b.T("xx", "online"))
	assert.Equal(t, "missing_key", b.T("en", "missing_key"))
}

func TestLoadRequiresFallback(t *testing.T) {
	fsys := fstest.MapFS{"l/ms.json": {Data: []byte(`{}`)}}
	_, err := Load(fsys, "l", "en", []string{"en", "ms"})
	assert.Error(t, err)

	fsys = fstest.MapFS{"l/en.json": {Data: []byte(`{nope`)}}
	_, err = Load(fsys, "l", "en", nil)
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	b := Default()
	assert.Equal(t, "Enter username for row 2", b.Format("en", "enter_username_for_row", "index", "2"))
	assert.Equal(t, "Page 1 of 4", b.Format("en", "page_indicator", "current", "1", "total", "4"))
}

func TestMatch(t *testing.T) {
	b := Default()
	cases := map[string]string{
		"":            "en",
		"C":           "en",
		"en_US.UTF-8": "en",
		"ms_MY.UTF-8": "ms",
		"zh-Hans":     "zh",
		"fr_FR":       "en",
	}
	for in, want := range cases {
		assert.Equal(t, want, b.Match(in), "Match(%q)", in)
	}
}

func TestNextCycles(t *testing.T) {
	b := Default()
	assert.Equal(t, "ms", b.Next("en"))
	assert.Equal(t, "zh", b.Next("ms"))
	assert.Equal(t, "en", b.Next("zh"))
	assert.Equal(t, "en", b.Next("unknown"))
}

func TestForLanguages(t *testing.T) {
	b, err := ForLanguages([]string{"ms", "en"})
	require.NoError(t, err)
	assert.Equal(t, "en", b.Fallback())
	assert.ElementsMatch(t, []string{"en", "ms"}, b.Supported())

	b, err = ForLanguages([]string{"zh"})
	require.NoError(t, err)
	assert.Equal(t, "zh", b.Fallback())

	_, err = ForLanguages([]string{"fr"})
	require.Error(t, err)
}
