package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalSortsKeys(t *testing.T) {
	v := NewMap(
		P("b", Number(2)),
		P("a", String("<x & y>")),
		P("c", List{Bool(true), Null{}}),
	)
	out, err := MarshalCanonical(v)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"<x & y>","b":2,"c":[true,null]}`, string(out))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "é" as e + combining acute normalizes to the precomposed form.
	decomposed := String("e\u0301")
	composed := String("\u00e9")

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(composed)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	out, err := MarshalCanonical(String("a\u2028b"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(out))

	out, err = MarshalCanonical(String(`a\u2028b`))
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(out), "escaped backslash text stays escaped")
}

func TestCompareKeysRFC8785(t *testing.T) {
	// U+1F600 sorts after U+FF61 in UTF-8 but before it in UTF-16.
	assert.Equal(t, -1, compareKeysRFC8785("\U0001F600", "\uFF61"))
	assert.Equal(t, -1, compareKeysRFC8785("a", "ab"))
	assert.Equal(t, 0, compareKeysRFC8785("same", "same"))
}

func TestPageHashIgnoresNodeCollectionOrder(t *testing.T) {
	p1 := samplePage()
	p2 := samplePage()
	p2.Nodes[0], p2.Nodes[2] = p2.Nodes[2], p2.Nodes[0]

	assert.Equal(t, MustPageHash(p1), MustPageHash(p2))
	assert.Len(t, MustPageHash(p1), 64, "SHA-256 hex is 64 characters")
}

func TestPageHashChangesWithContent(t *testing.T) {
	base := MustPageHash(samplePage())

	reordered := samplePage()
	reordered.RootOrder = []string{"txt", "box"}
	assert.NotEqual(t, base, MustPageHash(reordered), "root order is content")

	edited := samplePage()
	edited.Node("btn").Props.Set("label", String("Other"))
	assert.NotEqual(t, base, MustPageHash(edited))
}

func TestProjectHashIgnoresSaveMetadata(t *testing.T) {
	m1 := &Manifest{ProjectName: "demo", UILibrary: "element-plus", Pages: []*Page{samplePage()}}
	m2 := m1.Clone()
	m2.AutoSaveInterval = 900
	m2.MetaVersion = MetaVersion

	h1, err := ProjectHash(m1)
	require.NoError(t, err)
	h2, err := ProjectHash(m2)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	m2.GlobalStyles.Set("color", String("red"))
	h3, err := ProjectHash(m2)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}
