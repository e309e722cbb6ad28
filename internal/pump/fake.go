package pump

// FakeActuator records output transitions for test assertions.
type FakeActuator struct {
	// On is the current output state. Preset it to simulate a pump left
	// running across a reset.
	On bool

	// Transitions records every SetOutput value in order.
	Transitions []bool

	// SetError, if set, is returned by SetOutput.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeActuator creates a FakeActuator with the output off.
func NewFakeActuator() *FakeActuator {
	return &FakeActuator{}
}

// SetOutput records the transition and updates the state.
func (f *FakeActuator) SetOutput(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Transitions = append(f.Transitions, on)
	f.On = on
	return nil
}

// IsOutputOn reports the recorded output state.
func (f *FakeActuator) IsOutputOn() bool {
	return f.On
}

// Close marks the actuator as closed.
func (f *FakeActuator) Close() error {
	f.Closed = true
	return nil
}
