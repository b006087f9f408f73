package dispatch

import (
	"testing"

	dserrors "github.com/paveg/dscribe/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Operation
	}{
		{"", nil, Head{}},
		{"head", nil, Head{}},
		{"HEAD", nil, Head{}},
		{"show", nil, Show{N: DefaultRows}},
		{"show", []string{"12"}, Show{N: 12}},
		{"show", []string{"0"}, Show{N: 0}},
		{"sample", nil, Sample{N: DefaultRows}},
		{"sample", []string{" 3 "}, Sample{N: 3}},
		{"summary", nil, Summary{}},
		{"describe", nil, Summary{}},
		{"basic_statistics", nil, BasicStatistics{}},
		{"basic-statistics", nil, BasicStatistics{}},
		{"columns", nil, Columns{}},
		{"count", nil, Count{}},
		{"mean", nil, Mean{}},
		{"median", nil, Median{}},
		{"mode", nil, Mode{}},
		{"sum", nil, Sum{}},
		{"nan", nil, Nan{}},
		{"not_nan", nil, NotNan{}},
		{"sql", []string{"SELECT 1"}, SQL{Query: "SELECT 1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := Parse(tt.name, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, op)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		kind error
	}{
		{"pivot", nil, dserrors.ErrUnsupportedOperation},
		{"excel", nil, dserrors.ErrUnsupportedOperation},
		{"show", []string{"-1"}, dserrors.ErrInvalidInput},
		{"show", []string{"ten"}, dserrors.ErrInvalidInput},
		{"show", []string{"1", "2"}, dserrors.ErrInvalidInput},
		{"sql", nil, dserrors.ErrInvalidInput},
		{"count", []string{"a"}, dserrors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.name, tt.args)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	_, err := Parse("pivot", nil)
	assert.Contains(t, err.Error(), "pivot")
}

func TestReductionsCoverEveryStatisticOperation(t *testing.T) {
	for _, op := range []Operation{Count{}, Mean{}, Median{}, Mode{}, Sum{}, Nan{}, NotNan{}} {
		r, ok := reductions[op.Name()]
		assert.True(t, ok, op.Name())
		assert.Equal(t, op.Name(), r.String())
	}
}
