package k8s_test

import (
	"strings"
	"testing"

	"github.com/devantler-tech/msail/pkg/k8s"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeToDNSLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"whitespace only", "   ", ""},
		{"lowercase letters", "churn", "churn"},
		{"uppercase letters normalized", "CHURN", "churn"},
		{"mixed case", "ChurnModel", "churnmodel"},
		{"spaces become hyphens", "churn model", "churn-model"},
		{"special characters become hyphens", "churn.model/v2", "churn-model-v2"},
		{"consecutive specials collapse to single hyphen", "churn...model", "churn-model"},
		{"leading specials trimmed", "...churn", "churn"},
		{"trailing specials trimmed", "churn...", "churn"},
		{"leading and trailing whitespace trimmed", "  churn  ", "churn"},
		{"numbers preserved", "churn123", "churn123"},
		{"numeric only", "12345", "12345"},
		{"mixed with numbers", "my-model-2.0", "my-model-2-0"},
		{"unicode characters become hyphens", "héllo wörld", "h-llo-w-rld"},
		{"single character", "a", "a"},
		{"single special becomes empty", ".", ""},
		{"path-like input", "models/churn/latest", "models-churn-latest"},
		{"underscores become hyphens", "my_model_name", "my-model-name"},
		{
			"long input capped at 63 characters",
			strings.Repeat("a", 80),
			strings.Repeat("a", 63),
		},
		{
			"cap does not leave trailing hyphen",
			strings.Repeat("a", 62) + "." + strings.Repeat("b", 20),
			strings.Repeat("a", 62),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			result := k8s.SanitizeToDNSLabel(test.input)

			assert.Equal(t, test.expected, result)
		})
	}
}
