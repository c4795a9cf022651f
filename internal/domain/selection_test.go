package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepNumber(t *testing.T) {
	tests := []struct {
		name  string
		num   string
		delta int
		want  string
	}{
		{"increment", "0012", 1, "0013"},
		{"decrement", "0012", -1, "0011"},
		{"clamps at zero", "0001", -1, "0000"},
		{"stays clamped", "0000", -1, "0000"},
		{"unpadded input repads", "7", 1, "0008"},
		{"whitespace tolerated", " 0099 ", 1, "0100"},
		{"grows past pad width", "9999", 1, "10000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StepNumber(tt.num, tt.delta)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStepNumber_NonNumeric(t *testing.T) {
	_, err := StepNumber("abcd", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "abcd")
}

func TestPadNumber(t *testing.T) {
	assert.Equal(t, "0000", PadNumber(0))
	assert.Equal(t, "0042", PadNumber(42))
	assert.Equal(t, "1234", PadNumber(1234))
}

func TestSelection_Resolve(t *testing.T) {
	date := time.Date(2024, time.September, 15, 0, 0, 0, 0, time.UTC)

	t.Run("number mode", func(t *testing.T) {
		s := Selection{Mode: ModeNumber, Year: 2023, Number: "0007", Date: date, DateNumber: "0099"}
		year, num, err := s.Resolve()
		require.NoError(t, err)
		assert.Equal(t, 2023, year)
		assert.Equal(t, "0007", num)
	})

	t.Run("date mode", func(t *testing.T) {
		s := Selection{Mode: ModeDate, Year: 2023, Number: "0007", Date: date, DateNumber: "0012"}
		year, num, err := s.Resolve()
		require.NoError(t, err)
		assert.Equal(t, 2024, year)
		assert.Equal(t, "0012", num)
	})

	t.Run("idle", func(t *testing.T) {
		_, _, err := Selection{}.Resolve()
		require.Error(t, err)
	})

	t.Run("incomplete number mode", func(t *testing.T) {
		_, _, err := Selection{Mode: ModeNumber, Year: 2023}.Resolve()
		require.Error(t, err)
	})
}

func TestDateKeyRoundTrip(t *testing.T) {
	d, err := ParseDateKey("20240915")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.September, 15, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "20240915", DateKey(d))

	_, err = ParseDateKey("2024-09-15")
	require.Error(t, err)
}
