package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockTime(t *testing.T) {
	ct, err := ParseClockTime("08:30")
	require.NoError(t, err)
	assert.Equal(t, NewClockTime(8, 30), ct)

	ct, err = ParseClockTime("23:59:59")
	require.NoError(t, err)
	assert.Equal(t, "23:59", ct.String())

	for _, raw := range []string{"", "8", "24:00", "10:60", "aa:bb", "10:00:99"} {
		_, err := ParseClockTime(raw)
		assert.Error(t, err, raw)
	}
}

func TestClockTimeJSON(t *testing.T) {
	var req ScheduleRequest
	require.NoError(t, json.Unmarshal([]byte(`{"day":"monday","start_time":"08:00","end_time":"10:00:00","modality_id":"1"}`), &req))
	assert.Equal(t, Monday, req.Day)
	assert.Equal(t, NewClockTime(8, 0), req.StartTime)
	assert.Equal(t, NewClockTime(10, 0), req.EndTime)

	out, err := json.Marshal(NewClockTime(9, 5))
	require.NoError(t, err)
	assert.JSONEq(t, `"09:05"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"day":"funday"}`), &req))
}

func TestClockTimeScanValue(t *testing.T) {
	var ct ClockTime
	require.NoError(t, ct.Scan([]byte("14:15:00")))
	assert.Equal(t, NewClockTime(14, 15), ct)

	require.NoError(t, ct.Scan(time.Date(0, 1, 1, 7, 45, 0, 0, time.UTC)))
	assert.Equal(t, NewClockTime(7, 45), ct)

	assert.Error(t, ct.Scan(3.5))

	v, err := NewClockTime(7, 45).Value()
	require.NoError(t, err)
	assert.Equal(t, "07:45:00", v)
}

func TestActorConstructors(t *testing.T) {
	assert.True(t, AdminActor().IsAdmin())
	section := SectionActor("sec-1")
	assert.True(t, section.IsSection())
	assert.Equal(t, "sec-1", section.SectionID)
	teacher := TeacherActor("t-1")
	assert.True(t, teacher.IsTeacher())
	assert.Equal(t, "t-1", teacher.TeacherID)
}
