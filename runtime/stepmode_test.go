package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepModeConsumeIsOneShot(t *testing.T) {
	var s StepMode
	s.Arm(7)

	assert.True(t, s.Consume(7))
	assert.False(t, s.Consume(7)) // already consumed
}

func TestStepModeConsumeIgnoresOtherFile(t *testing.T) {
	var s StepMode
	s.Arm(7)

	assert.False(t, s.Consume(8))
	assert.True(t, s.Consume(7)) // still armed, untouched by the miss above
}

func TestStepModeDisarm(t *testing.T) {
	var s StepMode
	s.Arm(7)
	s.Disarm()
	assert.False(t, s.Consume(7))
}
