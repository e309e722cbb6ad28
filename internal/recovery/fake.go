package recovery

// FakeExecutor records recovery actions for test assertions.
type FakeExecutor struct {
	Restarts    int
	PowerCycles int
	ModemResets int
}

// NewFakeExecutor creates a FakeExecutor.
func NewFakeExecutor() *FakeExecutor {
	return &FakeExecutor{}
}

// Restart records a process restart. Unlike the real executor it returns,
// so tests can assert what happened.
func (f *FakeExecutor) Restart() {
	f.Restarts++
}

// PowerCycle records a power cycle.
func (f *FakeExecutor) PowerCycle() error {
	f.PowerCycles++
	return nil
}

// ModemReset records a modem reset.
func (f *FakeExecutor) ModemReset() error {
	f.ModemResets++
	return nil
}
