package query

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []uint64
		wantErr bool
	}{
		{name: "empty", raw: "", want: nil},
		{name: "blank", raw: "   ", want: nil},
		{name: "single", raw: "7", want: []uint64{7}},
		{name: "many with spaces", raw: "1, 2 ,3", want: []uint64{1, 2, 3}},
		{name: "duplicates dropped", raw: "2,1,2", want: []uint64{2, 1}},
		{name: "letters", raw: "1,abc", wantErr: true},
		{name: "trailing comma", raw: "1,", wantErr: true},
		{name: "negative", raw: "-1", wantErr: true},
		{name: "zero", raw: "0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDList(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidIDList))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	_, err = ParseID("x")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-10-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 10, 5, 0, 0, 0, 0, time.UTC), d)

	for _, raw := range []string{"05-10-2024", "2024-13-01", "tomorrow"} {
		_, err := ParseDate(raw)
		assert.ErrorIs(t, err, ErrInvalidDate, raw)
	}
}
