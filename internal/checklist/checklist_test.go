package checklist

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	cat, err := LoadCatalog()
	require.NoError(t, err)

	require.Len(t, cat.All(), 6)

	marriage, err := cat.Extension("marriage")
	require.NoError(t, err)
	assert.Equal(t, `Non-Immigrant Type "O" (Marriage Visa)`, marriage.Title)
	assert.Equal(t, "thai-visa-checklist:marriage:checked:v1", marriage.StorageKey())
	assert.Equal(t, 23, marriage.Total())
	assert.False(t, marriage.HasKey(FormsKey))
	assert.True(t, marriage.HasKey("Payment:0"))

	stage, err := cat.Stage("marriage", 1)
	require.NoError(t, err)
	assert.Equal(t, "thai-visa-checklist:marriage:stage1:checked:v1", stage.StorageKey())
	assert.True(t, stage.IsStage())
	assert.Equal(t, FormsKey, stage.Keys()[0])
	assert.Equal(t, 19, stage.Total(), "18 items plus the forms row")

	_, err = cat.Stage("education", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadCatalog_OrderedByVisaThenStage(t *testing.T) {
	cat, err := LoadCatalog()
	require.NoError(t, err)

	var got []string
	for _, c := range cat.All() {
		got = append(got, c.ID)
	}
	assert.Equal(t, []string{
		"marriage-stage-1", "marriage-stage-2", "marriage",
		"retirement-stage-1", "retirement-stage-2", "retirement",
	}, got)
}

func TestLoadCatalog_Invalid(t *testing.T) {
	tests := map[string]fstest.MapFS{
		"missing namespace": {"d/a.yaml": {Data: []byte("visa: x\nsections: [{title: s, items: [{text: t}]}]\n")}},
		"bad yaml":          {"d/a.yaml": {Data: []byte("visa: [")}},
		"duplicate": {
			"d/a.yaml": {Data: []byte("id: a\nvisa: x\nnamespace: x\nstage: 1\nsections: [{title: s}]\n")},
			"d/b.yaml": {Data: []byte("id: b\nvisa: x\nnamespace: y\nstage: 1\nsections: [{title: s}]\n")},
		},
		"duplicate id": {
			"d/a.yaml": {Data: []byte("id: a\nvisa: x\nnamespace: x\nstage: 1\nsections: [{title: s}]\n")},
			"d/b.yaml": {Data: []byte("id: a\nvisa: x\nnamespace: y\nstage: 2\nsections: [{title: s}]\n")},
		},
		"missing id":             {"d/a.yaml": {Data: []byte("visa: x\nnamespace: x\nsections: [{title: s}]\n")}},
		"relative form url":      {"d/a.yaml": {Data: []byte("id: a\nvisa: x\nnamespace: x\nforms: [{code: TM.7, url: forms/tm7.pdf}]\nsections: [{title: s}]\n")}},
		"protocol-relative note": {"d/a.yaml": {Data: []byte("id: a\nvisa: x\nnamespace: x\nsections: [{title: s, items: [{text: t, note_url: //evil.example}]}]\n")}},
	}

	for name, fsys := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := loadCatalog(fsys, "d")
			assert.Error(t, err)
		})
	}
}

func TestItemKey(t *testing.T) {
	assert.Equal(t, "Personal Documents:0", ItemKey("Personal Documents", 0))
	assert.Equal(t, "Proof of Income / Funds:5", ItemKey("Proof of Income / Funds", 5))
}

func TestCatalog_GetAndPath(t *testing.T) {
	cat, err := LoadCatalog()
	require.NoError(t, err)

	tests := []struct {
		id   string
		path string
	}{
		{id: "marriage", path: "/visa/marriage"},
		{id: "marriage-stage-1", path: "/visa/marriage/stages/stage-1"},
		{id: "retirement-stage-2", path: "/visa/retirement/stages/stage-2"},
	}
	for _, tt := range tests {
		cl, err := cat.Get(tt.id)
		require.NoError(t, err, tt.id)
		assert.Equal(t, tt.path, cl.Path())
	}

	_, err = cat.Get("business")
	assert.ErrorIs(t, err, ErrNotFound)
}
