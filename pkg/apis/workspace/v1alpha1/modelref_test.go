package v1alpha1_test

import (
	"testing"

	v1alpha1 "github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelRef(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name            string
		ref             string
		expectedName    string
		expectedVersion int
		expectErr       bool
	}{
		{name: "name only selects latest", ref: "accidents", expectedName: "accidents", expectedVersion: 0},
		{name: "name with version", ref: "accidents:3", expectedName: "accidents", expectedVersion: 3},
		{name: "empty name", ref: ":3", expectErr: true},
		{name: "empty ref", ref: "", expectErr: true},
		{name: "non-numeric version", ref: "accidents:latest", expectErr: true},
		{name: "zero version", ref: "accidents:0", expectErr: true},
		{name: "negative version", ref: "accidents:-1", expectErr: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			name, version, err := v1alpha1.ParseModelRef(testCase.ref)

			if testCase.expectErr {
				require.ErrorIs(t, err, v1alpha1.ErrModelReferenceInvalid)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.expectedName, name)
			assert.Equal(t, testCase.expectedVersion, version)
		})
	}
}
