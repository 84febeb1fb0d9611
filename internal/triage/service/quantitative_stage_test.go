package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractQuantitativeValues(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "currency with magnitude suffix",
			text:     "EchoStar To Sell Spectrum Licenses To AT&T For $23B",
			expected: []string{"$23B"},
		},
		{
			name:     "currency with spelled out magnitude",
			text:     "Acme Lands $1.5 Billion Supply Agreement",
			expected: []string{"$1.5 Billion"},
		},
		{
			name:     "percentage",
			text:     "Beta Corp Revenue Up 12.5% Year Over Year",
			expected: []string{"12.5%"},
		},
		{
			name:     "multiple values",
			text:     "Acme Posts Q3 Revenue Of $890M, Margin Expands To 41%",
			expected: []string{"$890M", "41%"},
		},
		{
			name:     "euro amount",
			text:     "Gamma Secures €500M Credit Facility",
			expected: []string{"€500M"},
		},
		{
			name:     "no values",
			text:     "Acme Names New Chief Executive",
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractQuantitativeValues(tc.text))
		})
	}
}

func TestMergeCatalystValues(t *testing.T) {
	merged := mergeCatalystValues([]string{"$23B", "15%"}, []string{"$23b", "$4.2M", "15 %"})
	assert.Equal(t, []string{"$23B", "15%", "$4.2M"}, merged)

	assert.Empty(t, mergeCatalystValues(nil, nil))
	assert.Equal(t, []string{"$10M"}, mergeCatalystValues(nil, []string{"$10M"}))
}
