package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_RoundTrip(t *testing.T) {
	ts := Now()
	data, err := json.Marshal(ts)
	require.NoError(t, err)

	var back Timestamp
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, ts.Equal(back.Time))
}

func TestTimestamp_AcceptsLegacyIsoformat(t *testing.T) {
	// Python's datetime.isoformat() writes no zone and microseconds.
	cases := map[string]time.Time{
		`"2023-05-01T09:30:00.123456"`: time.Date(2023, 5, 1, 9, 30, 0, 123456000, time.UTC),
		`"2023-05-01T09:30:00"`:        time.Date(2023, 5, 1, 9, 30, 0, 0, time.UTC),
		`"2023-05-01"`:                 time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
		`"2023-05-01T09:30:00Z"`:       time.Date(2023, 5, 1, 9, 30, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		t.Run(raw, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(raw), &ts))
			assert.True(t, want.Equal(ts.Time), "got %v want %v", ts.Time, want)
		})
	}
}

func TestTimestamp_ZeroValue(t *testing.T) {
	var ts Timestamp
	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `""`, string(data))

	var back Timestamp
	require.NoError(t, json.Unmarshal([]byte(`""`), &back))
	assert.True(t, back.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`null`), &back))
	assert.True(t, back.IsZero())
}

func TestTimestamp_RejectsGarbage(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestEnums(t *testing.T) {
	assert.True(t, ValidTaskStatus("To Do"))
	assert.True(t, ValidTaskStatus("Completed"))
	assert.False(t, ValidTaskStatus("Done"))

	assert.True(t, ValidTaskPriority("Critical"))
	assert.False(t, ValidTaskPriority("Urgent"))

	assert.True(t, ValidRole("admin"))
	assert.True(t, ValidRole("lead"))
	assert.True(t, ValidRole("member"))
	assert.False(t, ValidRole("owner"))
}

func TestUser_Member(t *testing.T) {
	u := User{ID: 3, Password: "secret-hash", Name: "Maria Garcia", Role: RoleLead, Email: "maria@circuitbreakers.org"}
	m := u.Member("maria.garcia")
	assert.Equal(t, "maria.garcia", m.Username)
	assert.Equal(t, "Maria Garcia", m.Name)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret-hash")
}
