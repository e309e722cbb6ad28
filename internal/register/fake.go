package register

import "time"

// FakeStore is an in-memory Store for tests. It starts at the post-erase
// defaults and counts writes so tests can assert persistence happened.
type FakeStore struct {
	Flags      Flags
	Resets     uint32
	DailyMins  uint16
	PumpStart  time.Time
	LastResp   time.Time
	TZOffset   int
	PutCount   int
	EraseCount int
}

// NewFakeStore creates a FakeStore with default register contents.
func NewFakeStore() *FakeStore {
	return &FakeStore{TZOffset: DefaultTimeZoneOffset}
}

// ControlFlags returns the control register.
func (f *FakeStore) ControlFlags() Flags { return f.Flags }

// PutControlFlags stores the control register.
func (f *FakeStore) PutControlFlags(fl Flags) {
	f.Flags = fl
	f.PutCount++
}

// ResetCount returns the abnormal-restart counter.
func (f *FakeStore) ResetCount() uint32 { return f.Resets }

// PutResetCount stores the abnormal-restart counter.
func (f *FakeStore) PutResetCount(n uint32) {
	f.Resets = n
	f.PutCount++
}

// DailyPumpingMins returns the daily pumping minutes.
func (f *FakeStore) DailyPumpingMins() uint16 { return f.DailyMins }

// PutDailyPumpingMins stores the daily pumping minutes.
func (f *FakeStore) PutDailyPumpingMins(n uint16) {
	f.DailyMins = n
	f.PutCount++
}

// PumpingStart returns the pump-session start time.
func (f *FakeStore) PumpingStart() time.Time { return f.PumpStart }

// PutPumpingStart stores the pump-session start time.
func (f *FakeStore) PutPumpingStart(t time.Time) {
	f.PumpStart = t
	f.PutCount++
}

// LastResponse returns the last successful acknowledgment time.
func (f *FakeStore) LastResponse() time.Time { return f.LastResp }

// PutLastResponse stores the last successful acknowledgment time.
func (f *FakeStore) PutLastResponse(t time.Time) {
	f.LastResp = t
	f.PutCount++
}

// TimeZoneOffset returns the base hour offset.
func (f *FakeStore) TimeZoneOffset() int { return f.TZOffset }

// PutTimeZoneOffset stores the base hour offset.
func (f *FakeStore) PutTimeZoneOffset(offset int) {
	f.TZOffset = offset
	f.PutCount++
}

// Erase resets every register to its default.
func (f *FakeStore) Erase() {
	*f = FakeStore{TZOffset: DefaultTimeZoneOffset, EraseCount: f.EraseCount + 1}
}
