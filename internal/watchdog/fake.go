package watchdog

// FakePetter counts pets for test assertions.
type FakePetter struct {
	Pets   int
	PetErr error
	Closed bool
}

// NewFakePetter creates a FakePetter.
func NewFakePetter() *FakePetter {
	return &FakePetter{}
}

// Pet records the pulse.
func (f *FakePetter) Pet() error {
	if f.PetErr != nil {
		return f.PetErr
	}
	f.Pets++
	return nil
}

// Close marks the petter as closed.
func (f *FakePetter) Close() error {
	f.Closed = true
	return nil
}
