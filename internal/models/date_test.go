package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(1990, time.April, 15)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"1990-04-15"`, string(data))

	var parsed Date
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.True(t, parsed.Equal(d.Time))
}

func TestDateUnmarshalInvalid(t *testing.T) {
	var d Date
	err := json.Unmarshal([]byte(`"15/04/1990"`), &d)
	assert.Error(t, err)
}

func TestDateInContactJSON(t *testing.T) {
	bday := NewDate(2000, time.December, 31)
	contact := Contact{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john@x.com",
		Phone:     "123",
		Birthday:  &bday,
	}

	data, err := json.Marshal(contact)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"birthday":"2000-12-31"`)

	// a contact without a birthday serializes it as null
	contact.Birthday = nil
	data, err = json.Marshal(contact)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"birthday":null`)
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(1990, time.April, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1990-04-15", d.String())

	var fromString Date
	require.NoError(t, fromString.Scan("1990-04-15"))
	assert.Equal(t, "1990-04-15", fromString.String())

	var bad Date
	assert.Error(t, bad.Scan(42))
}
