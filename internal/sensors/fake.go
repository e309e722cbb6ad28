package sensors

import (
	"errors"

	"github.com/sweeney/wellhead-controller/internal/logic"
)

// FakeReader is a test double that returns scripted readings.
type FakeReader struct {
	// Samples contains scripted readings. Each call to Readings consumes
	// the next one; when exhausted, the last is returned repeatedly.
	Samples []logic.Readings

	index int

	// AuxPower records the last SetAuxPower value (defaults on).
	AuxPower bool

	// Closed tracks if Close was called.
	Closed bool

	// ReadError, if set, is returned by Readings.
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples ...logic.Readings) *FakeReader {
	return &FakeReader{Samples: samples, AuxPower: true}
}

// Readings returns the next scripted sample.
func (f *FakeReader) Readings() (logic.Readings, error) {
	if f.ReadError != nil {
		return logic.Readings{}, f.ReadError
	}
	if len(f.Samples) == 0 {
		return logic.Readings{}, errors.New("no samples configured")
	}
	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return sample, nil
}

// SetAuxPower records the aux power state.
func (f *FakeReader) SetAuxPower(on bool) error {
	f.AuxPower = on
	return nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Push appends a sample and jumps to it, so tests can change sensor values
// mid-scenario.
func (f *FakeReader) Push(r logic.Readings) {
	f.Samples = append(f.Samples, r)
	f.index = len(f.Samples) - 1
}
