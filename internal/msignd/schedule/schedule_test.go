package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesophy/mesophy-signage/internal/msignd/device"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{"00:00", 0, false},
		{"08:30", 510, false},
		{"23:59", 1439, false},
		{"24:00", 1440, false},
		{"24:01", 0, true},
		{"25:00", 0, true},
		{"08:60", 0, true},
		{"späti", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "08:05", TimeOfDay(485).String())
	assert.Equal(t, "00:00", TimeOfDay(0).String())
}

func TestWeekdaySet(t *testing.T) {
	weekdays := NewWeekdaySet(time.Monday, time.Wednesday, time.Friday)

	assert.True(t, weekdays.Contains(time.Monday))
	assert.False(t, weekdays.Contains(time.Sunday))
	assert.False(t, weekdays.IsEmpty())
	assert.True(t, WeekdaySet(0).IsEmpty())

	assert.True(t, weekdays.Intersects(NewWeekdaySet(time.Friday, time.Saturday)))
	assert.False(t, weekdays.Intersects(NewWeekdaySet(time.Tuesday, time.Thursday)))

	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, weekdays.Days())
	assert.Equal(t, "Mon,Wed,Fri", weekdays.String())
}

func validSchedule() *Schedule {
	return &Schedule{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		Name:           "business hours",
		PlaylistID:     uuid.New(),
		StartDate:      time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		StartTime:      9 * 60,
		EndTime:        17 * 60,
		Weekdays:       AllWeek,
		Active:         true,
	}
}

func TestScheduleValidate(t *testing.T) {
	assert.NoError(t, validSchedule().Validate())

	t.Run("missing name", func(t *testing.T) {
		s := validSchedule()
		s.Name = ""
		assert.Error(t, s.Validate())
	})

	t.Run("inverted window", func(t *testing.T) {
		s := validSchedule()
		s.StartTime = 22 * 60
		s.EndTime = 6 * 60
		err := s.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cross midnight")
	})

	t.Run("empty window", func(t *testing.T) {
		s := validSchedule()
		s.StartTime = 9 * 60
		s.EndTime = 9 * 60
		assert.Error(t, s.Validate())
	})

	t.Run("no weekdays", func(t *testing.T) {
		s := validSchedule()
		s.Weekdays = 0
		assert.Error(t, s.Validate())
	})

	t.Run("end date before start date", func(t *testing.T) {
		s := validSchedule()
		end := s.StartDate.AddDate(0, 0, -1)
		s.EndDate = &end
		assert.Error(t, s.Validate())
	})
}

func TestScheduleActiveAt(t *testing.T) {
	s := validSchedule()
	s.Weekdays = NewWeekdaySet(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)

	// 2026-09-02 is a Wednesday.
	wednesdayNoon := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)
	assert.True(t, s.ActiveAt(wednesdayNoon))

	t.Run("inactive flag", func(t *testing.T) {
		inactive := *s
		inactive.Active = false
		assert.False(t, inactive.ActiveAt(wednesdayNoon))
	})

	t.Run("before start date", func(t *testing.T) {
		assert.False(t, s.ActiveAt(time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)))
	})

	t.Run("after end date", func(t *testing.T) {
		bounded := *s
		end := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
		bounded.EndDate = &end
		assert.False(t, bounded.ActiveAt(time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)))
		// End date itself is inclusive.
		assert.True(t, bounded.ActiveAt(time.Date(2026, 9, 30, 12, 0, 0, 0, time.UTC)))
	})

	t.Run("excluded weekday", func(t *testing.T) {
		// 2026-09-05 is a Saturday.
		assert.False(t, s.ActiveAt(time.Date(2026, 9, 5, 12, 0, 0, 0, time.UTC)))
	})

	t.Run("window boundaries", func(t *testing.T) {
		assert.True(t, s.ActiveAt(time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)))
		// End is exclusive.
		assert.False(t, s.ActiveAt(time.Date(2026, 9, 2, 17, 0, 0, 0, time.UTC)))
		assert.False(t, s.ActiveAt(time.Date(2026, 9, 2, 8, 59, 0, 0, time.UTC)))
	})
}

func TestScheduleTargets(t *testing.T) {
	locationID := uuid.New()
	screen := &device.Screen{
		DeviceID:   "lobby-north-01",
		DeviceType: "raspberry-pi",
		LocationID: &locationID,
	}

	t.Run("global matches everything", func(t *testing.T) {
		s := validSchedule()
		assert.True(t, s.IsGlobal())
		assert.True(t, s.Targets(screen))
	})

	t.Run("device id", func(t *testing.T) {
		s := validSchedule()
		deviceID := "lobby-north-01"
		s.TargetDeviceID = &deviceID
		assert.True(t, s.Targets(screen))

		other := "lobby-south-02"
		s.TargetDeviceID = &other
		assert.False(t, s.Targets(screen))
	})

	t.Run("device id wins over other targeting", func(t *testing.T) {
		s := validSchedule()
		deviceID := "lobby-south-02"
		s.TargetDeviceID = &deviceID
		s.TargetDeviceTypes = []string{"raspberry-pi"}
		assert.False(t, s.Targets(screen))
	})

	t.Run("device type", func(t *testing.T) {
		s := validSchedule()
		s.TargetDeviceTypes = []string{"android", "raspberry-pi"}
		assert.True(t, s.Targets(screen))

		s.TargetDeviceTypes = []string{"browser"}
		assert.False(t, s.Targets(screen))
	})

	t.Run("location", func(t *testing.T) {
		s := validSchedule()
		s.TargetLocationIDs = []uuid.UUID{locationID}
		assert.True(t, s.Targets(screen))

		s.TargetLocationIDs = []uuid.UUID{uuid.New()}
		assert.False(t, s.Targets(screen))
	})

	t.Run("location targeting skips unplaced screens", func(t *testing.T) {
		s := validSchedule()
		s.TargetLocationIDs = []uuid.UUID{locationID}
		unplaced := &device.Screen{DeviceID: "kiosk-01"}
		assert.False(t, s.Targets(unplaced))
	})
}

func TestScheduleIntersects(t *testing.T) {
	base := validSchedule()

	t.Run("overlapping windows", func(t *testing.T) {
		other := validSchedule()
		other.StartTime = 16 * 60
		other.EndTime = 20 * 60
		assert.True(t, base.Intersects(other))
		assert.True(t, other.Intersects(base))
	})

	t.Run("adjacent windows do not overlap", func(t *testing.T) {
		other := validSchedule()
		other.StartTime = 17 * 60
		other.EndTime = 20 * 60
		assert.False(t, base.Intersects(other))
	})

	t.Run("disjoint weekdays", func(t *testing.T) {
		weekend := validSchedule()
		weekend.Weekdays = NewWeekdaySet(time.Saturday, time.Sunday)
		weekday := validSchedule()
		weekday.Weekdays = NewWeekdaySet(time.Monday, time.Friday)
		assert.False(t, weekend.Intersects(weekday))
	})

	t.Run("disjoint date ranges", func(t *testing.T) {
		past := validSchedule()
		past.StartDate = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
		past.EndDate = &end
		assert.False(t, past.Intersects(base))
	})

	t.Run("open-ended ranges always share days", func(t *testing.T) {
		early := validSchedule()
		early.StartDate = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		assert.True(t, early.Intersects(base))
	})
}
