package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractYAMLErrorStringFallback(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedLine    int
		expectedColumn  int
		expectedMessage string
	}{
		{
			name:            "yaml line error",
			err:             errors.New("yaml: line 7: mapping values are not allowed in this context"),
			expectedLine:    7,
			expectedColumn:  0,
			expectedMessage: "mapping values are not allowed in this context",
		},
		{
			name:            "yaml error with indentation issue",
			err:             errors.New("yaml: line 4: bad indentation of a mapping entry"),
			expectedLine:    4,
			expectedColumn:  0,
			expectedMessage: "bad indentation of a mapping entry",
		},
		{
			name:            "non-yaml error",
			err:             errors.New("some other error"),
			expectedLine:    0,
			expectedColumn:  0,
			expectedMessage: "some other error",
		},
		{
			name:            "yaml line and column error",
			err:             errors.New("yaml: line 3: column 5: unexpected token"),
			expectedLine:    3,
			expectedColumn:  5,
			expectedMessage: "unexpected token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, column, message := ExtractYAMLError(tt.err)
			require.Equal(t, tt.expectedLine, line)
			require.Equal(t, tt.expectedColumn, column)
			require.Equal(t, tt.expectedMessage, message)
		})
	}
}
