package store

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/pbaille/jobtrack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleApps() []domain.Application {
	return []domain.Application{
		{
			ID:              "b",
			CompanyName:     "Beta & Sons",
			JobTitle:        "Backend <Go> Engineer",
			JobURL:          "https://example.com/b",
			ApplicationDate: civil.Date{Year: 2024, Month: 1, Day: 15},
			Status:          domain.StatusInterview,
			Notes:           "phone screen \"soon\"",
			CreatedAt:       time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:              "a",
			CompanyName:     "Acme",
			JobTitle:        "SRE",
			ApplicationDate: civil.Date{Year: 2024, Month: 1, Day: 10},
			Status:          domain.StatusApplied,
			CreatedAt:       time.Date(2024, 1, 10, 14, 30, 0, 123000000, time.UTC),
		},
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	apps := sampleApps()

	value, err := Encode(apps)
	require.NoError(t, err)

	got, problems, err := Decode(value)
	require.NoError(t, err)
	assert.Empty(t, problems)
	assert.Equal(t, apps, got)
}

func TestEncodeDecode_Empty(t *testing.T) {
	value, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", value)

	got, problems, err := Decode(value)
	require.NoError(t, err)
	assert.Empty(t, problems)
	assert.Empty(t, got)
}

func TestEncode_FieldNames(t *testing.T) {
	value, err := Encode(sampleApps()[1:])
	require.NoError(t, err)

	assert.JSONEq(t, `[{
		"id": "a",
		"companyName": "Acme",
		"jobTitle": "SRE",
		"applicationDate": "2024-01-10",
		"status": "Applied",
		"createdAt": "2024-01-10T14:30:00.123Z"
	}]`, value)
}

func TestDecode_OriginalFormat(t *testing.T) {
	value := `[{"id":"3","companyName":"HARVARD","jobTitle":"Frontend Developer","jobUrl":"",` +
		`"applicationDate":"2024-01-05","status":"Rejected","notes":"More React please.",` +
		`"createdAt":"2024-01-05T09:15:00.000Z"}]`

	got, problems, err := Decode(value)
	require.NoError(t, err)
	assert.Empty(t, problems)
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "", got[0].JobURL)
	assert.Equal(t, civil.Date{Year: 2024, Month: 1, Day: 5}, got[0].ApplicationDate)
	assert.Equal(t, domain.StatusRejected, got[0].Status)
	assert.True(t, got[0].CreatedAt.Equal(time.Date(2024, 1, 5, 9, 15, 0, 0, time.UTC)))
}

func TestDecode_Malformed(t *testing.T) {
	for _, value := range []string{"", "not json", `{"id":"1"}`, `[{"id":`} {
		_, _, err := Decode(value)
		assert.Error(t, err, "value %q", value)
	}
}

func TestDecode_SkipsInvalidRecords(t *testing.T) {
	value := `[
		{"id":"ok","companyName":"Acme","jobTitle":"Dev","applicationDate":"2024-01-01","status":"Offer","createdAt":"2024-01-01T00:00:00Z"},
		{"id":"bad-date","companyName":"Acme","jobTitle":"Dev","applicationDate":"yesterday","status":"Offer","createdAt":"2024-01-01T00:00:00Z"},
		{"id":"bad-status","companyName":"Acme","jobTitle":"Dev","applicationDate":"2024-01-01","status":"Ghosted","createdAt":"2024-01-01T00:00:00Z"},
		{"companyName":"Acme","jobTitle":"Dev","applicationDate":"2024-01-01","status":"Offer","createdAt":"2024-01-01T00:00:00Z"},
		{"id":"ok","companyName":"Dup","jobTitle":"Dev","applicationDate":"2024-01-01","status":"Offer","createdAt":"2024-01-01T00:00:00Z"},
		{"id":"no-company","companyName":"","jobTitle":"Dev","applicationDate":"2024-01-01","status":"Offer","createdAt":"2024-01-01T00:00:00Z"}
	]`

	got, problems, err := Decode(value)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].ID)
	assert.Equal(t, "Acme", got[0].CompanyName)
	assert.Len(t, problems, 5)
}

func TestDecode_Null(t *testing.T) {
	got, problems, err := Decode("null")
	require.NoError(t, err)
	assert.Empty(t, problems)
	assert.Empty(t, got)
}
