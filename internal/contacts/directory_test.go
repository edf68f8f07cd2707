package contacts

import (
	"testing"

	"github.com/hyperjump/dialname/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(name, number string, typ PhoneType, label string) *models.ContactRecord {
	return &models.ContactRecord{DisplayName: name, Number: number, Type: int(typ), Label: label}
}

func sampleRecords() []*models.ContactRecord {
	return []*models.ContactRecord{
		rec("Jane Doe", "+1 (555) 000-0001", TypeMobile, ""),
		rec("Amy Lee", "555-000-0002", TypeHome, ""),
		rec("Jane Doe", "+15550000001", TypeMobile, ""),
		rec("Jane Doe", "555 000 0003", TypeCustom, "Boat"),
		rec("", "5550000004", TypeMobile, ""),
		rec("No Number", "", TypeMobile, ""),
		nil,
	}
}

func TestBuildDirectory(t *testing.T) {
	dir := BuildDirectory(sampleRecords())
	require.Len(t, dir, 2)

	assert.Equal(t, "Jane Doe", dir[0].Name)
	assert.Equal(t, []models.PhoneNumber{
		{Number: "+15550000001", Label: "Mobile"},
		{Number: "5550000003", Label: "Boat"},
	}, dir[0].PhoneNumbers)

	assert.Equal(t, "Amy Lee", dir[1].Name)
	assert.Equal(t, []models.PhoneNumber{{Number: "5550000002", Label: "Home"}}, dir[1].PhoneNumbers)
}

func TestBuildDirectory_PrefersStoredNormalizedNumber(t *testing.T) {
	r := rec("Bob", "(555) 111-2222", TypeWork, "")
	r.NormalizedNumber = "+15551112222"
	dir := BuildDirectory([]*models.ContactRecord{r})
	require.Len(t, dir, 1)
	assert.Equal(t, "+15551112222", dir[0].PhoneNumbers[0].Number)
}

func TestBuildDirectory_Empty(t *testing.T) {
	assert.Empty(t, BuildDirectory(nil))
}

func TestLabeledEntries(t *testing.T) {
	got := LabeledEntries(sampleRecords())
	assert.Equal(t, []models.NamedNumber{
		{Name: "Jane Doe (Mobile)", Number: "+15550000001"},
		{Name: "Amy Lee", Number: "5550000002"},
		{Name: "Jane Doe (Boat)", Number: "5550000003"},
	}, got)
}

func TestLabeledEntries_SingleNumberHasNoLabel(t *testing.T) {
	got := LabeledEntries([]*models.ContactRecord{
		rec("Solo", "555", TypeWork, ""),
		rec("Solo", "5-5-5", TypeWork, ""),
	})
	assert.Equal(t, []models.NamedNumber{{Name: "Solo", Number: "555"}}, got)
}

func TestLookupName(t *testing.T) {
	records := sampleRecords()
	tests := []struct {
		number string
		want   string
		found  bool
	}{
		{"+15550000001", "Jane Doe", true},
		{"(555) 000-0002", "Amy Lee", true},
		{"+1 555 000 0002", "Amy Lee", true},
		{"5550000001", "Jane Doe", true},
		{"5550000004", "", false},
		{"", "", false},
		{"+", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			name, ok := LookupName(records, tt.number)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, name)
		})
	}
}
