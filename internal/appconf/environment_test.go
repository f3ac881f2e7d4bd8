package appconf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvFlagToEnvironment(t *testing.T) {
	tests := []struct {
		flag     string
		expected Environment
	}{
		{"development", Development},
		{"test", Test},
		{"production", Production},
		{"", Development},
		{"staging", Development},
		{"Production", Development},
		{" test", Development},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			assert.Equal(t, tt.expected, EnvFlagToEnvironment(tt.flag))
		})
	}
}

func TestEnvironment_RoundTripsThroughFlag(t *testing.T) {
	for _, env := range []Environment{Development, Test, Production} {
		assert.Equal(t, env, EnvFlagToEnvironment(env.String()), env.String())
	}
}

func TestEnvironment_UnknownValuePrintsAsDevelopment(t *testing.T) {
	assert.Equal(t, "development", Environment(42).String())
	assert.Equal(t, Development, Environment(0), "the zero value is Development")
}
