package redact

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, k := range AllKinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseKind(" api_key ")
	require.NoError(t, err)
	assert.Equal(t, KindAPIKey, got)

	_, err = ParseKind("CREDIT_CARD")
	assert.Error(t, err)
}

func TestParseStyle(t *testing.T) {
	s, err := ParseStyle("")
	require.NoError(t, err)
	assert.False(t, s.IsSet())

	s, err = ParseStyle("mask_last4")
	require.NoError(t, err)
	assert.Equal(t, StyleMaskLast4, s)

	_, err = ParseStyle("SPARKLES")
	assert.Error(t, err)
}

func TestActionJSONUsesWireNames(t *testing.T) {
	var a Action
	require.NoError(t, json.Unmarshal([]byte(`{"detection_id":"s-1","style":"PIXELATE"}`), &a))
	assert.Equal(t, StylePixelate, a.Style)

	var unset Action
	require.NoError(t, json.Unmarshal([]byte(`{"detection_id":"s-2"}`), &unset))
	assert.False(t, unset.Style.IsSet())

	b, err := json.Marshal(Detection{ID: "s-1", Kind: KindPAN})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"kind":"PAN"`)
}

func TestPresetMapsKindKeys(t *testing.T) {
	p := Preset{ID: "x", StyleMap: map[Kind]Style{KindPAN: StyleMaskLast4}}
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"PAN":"MASK_LAST4"`)

	var back Preset
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, StyleMaskLast4, back.StyleFor(KindPAN))
	assert.Equal(t, StyleBox, back.StyleFor(KindEmail))
}

func TestPresetEnables(t *testing.T) {
	var nilPreset *Preset
	assert.True(t, nilPreset.Enables(KindName))

	p := &Preset{EnabledKinds: []Kind{KindEmail}}
	assert.True(t, p.Enables(KindEmail))
	assert.False(t, p.Enables(KindPhone))
}

func TestBoxUnion(t *testing.T) {
	a := Box{X: 0.25, Y: 0.25, W: 0.25, H: 0.25, Page: 2}

	u := a.Union(Box{X: 0.5, Y: 0.125, W: 0.25, H: 0.25, Page: 2})
	assert.InDelta(t, 0.25, u.X, 1e-9)
	assert.InDelta(t, 0.125, u.Y, 1e-9)
	assert.InDelta(t, 0.5, u.W, 1e-9)
	assert.InDelta(t, 0.375, u.H, 1e-9)
	assert.Equal(t, 2, u.Page)
	assert.InDelta(t, 0.75, u.Right(), 1e-9)
}

func TestIsFatal(t *testing.T) {
	fatal := &FatalIOError{Op: "read input", Err: errors.New("eof")}
	assert.True(t, IsFatal(fatal))
	assert.True(t, IsFatal(errors.Join(errors.New("ctx"), fatal)))
	assert.False(t, IsFatal(&ExtractionError{Source: "ocr", Page: 0, Err: errors.New("x")}))
	assert.ErrorContains(t, &ExtractionError{Source: "pdf", Page: -1, Err: errors.New("bad xref")}, "pdf extraction failed")
}
