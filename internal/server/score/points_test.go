package score

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoints_String(t *testing.T) {
	tests := []struct {
		in   Points
		want string
	}{
		{0, "0.00"},
		{250, "2.50"},
		{-150, "-1.50"},
		{-5, "-0.05"},
		{Whole(12), "12.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.String())
	}
}

func TestParsePoints(t *testing.T) {
	tests := []struct {
		in      string
		want    Points
		wantErr bool
	}{
		{in: "2.5", want: 250},
		{in: "-1.50", want: -150},
		{in: "4", want: 400},
		{in: ".25", want: 25},
		{in: "+0.05", want: 5},
		{in: "1.234", wantErr: true},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "1.-5", wantErr: true},
		{in: "92233720368547758.07", want: Points(math.MaxInt64)},
		{in: "-92233720368547758.07", want: -Points(math.MaxInt64)},
		{in: "92233720368547758.08", wantErr: true},
		{in: "100000000000000000", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePoints(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPoints_JSONIsANumber(t *testing.T) {
	b, err := json.Marshal(struct {
		Score Points `json:"score"`
	}{Score: -150})
	require.NoError(t, err)
	assert.JSONEq(t, `{"score":-1.5}`, string(b))

	var out struct {
		Score Points `json:"score"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"score":4.00}`), &out))
	assert.Equal(t, Points(400), out.Score)
}

func TestPoints_Scan(t *testing.T) {
	var p Points
	require.NoError(t, p.Scan(int64(-250)))
	assert.Equal(t, Points(-250), p)
	require.NoError(t, p.Scan(nil))
	assert.Equal(t, Points(0), p)
	assert.Error(t, p.Scan("2.5"))

	v, err := Points(125).Value()
	require.NoError(t, err)
	assert.Equal(t, int64(125), v)
}
