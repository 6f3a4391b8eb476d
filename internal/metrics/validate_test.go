package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanna-karuppasamy/solarwaterflow/internal/models"
)

func TestValidate_AcceptsBounds(t *testing.T) {
	valid := []models.SystemInputs{
		{Temperature: 0, SunlightHours: 0, Population: 100, DieselPrice: 0},
		{Temperature: 50, SunlightHours: 14, Population: 10000, DieselPrice: 99},
		{Temperature: 30, SunlightHours: 10, Population: 2500, DieselPrice: 1.2},
	}
	for _, in := range valid {
		assert.NoError(t, Validate(in), "%+v", in)
	}
}

func TestValidate_RejectsOutOfRange(t *testing.T) {
	base := models.SystemInputs{Temperature: 25, SunlightHours: 8, Population: 1000, DieselPrice: 1}

	tests := []struct {
		name  string
		tweak func(*models.SystemInputs)
		field string
	}{
		{"negative temperature", func(in *models.SystemInputs) { in.Temperature = -1 }, "temperature"},
		{"hot temperature", func(in *models.SystemInputs) { in.Temperature = 50.1 }, "temperature"},
		{"NaN temperature", func(in *models.SystemInputs) { in.Temperature = math.NaN() }, "temperature"},
		{"too much sun", func(in *models.SystemInputs) { in.SunlightHours = 14.5 }, "sunlightHours"},
		{"negative sun", func(in *models.SystemInputs) { in.SunlightHours = -0.5 }, "sunlightHours"},
		{"tiny village", func(in *models.SystemInputs) { in.Population = 99 }, "population"},
		{"city", func(in *models.SystemInputs) { in.Population = 10001 }, "population"},
		{"negative diesel", func(in *models.SystemInputs) { in.DieselPrice = -0.01 }, "dieselPrice"},
		{"infinite diesel", func(in *models.SystemInputs) { in.DieselPrice = math.Inf(1) }, "dieselPrice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.tweak(&in)

			err := Validate(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))

			var inputErr *InputError
			require.True(t, errors.As(err, &inputErr))
			require.Len(t, inputErr.Violations, 1)
			assert.Equal(t, tt.field, inputErr.Violations[0].Field)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	err := Validate(models.SystemInputs{Temperature: 80, SunlightHours: 20, Population: 5, DieselPrice: -1})

	var inputErr *InputError
	require.True(t, errors.As(err, &inputErr))
	fields := make([]string, 0, len(inputErr.Violations))
	for _, v := range inputErr.Violations {
		fields = append(fields, v.Field)
	}
	assert.Equal(t, []string{"temperature", "sunlightHours", "population", "dieselPrice"}, fields)
}
