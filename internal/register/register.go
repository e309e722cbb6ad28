// Package register provides the persistent register store: a small set of
// typed fields at fixed addresses that survive power loss and reset.
// The real implementation backs the map with an fsync'd SQLite file; the
// fake implementation keeps it in memory for tests.
package register

import "time"

// LayoutVersion is the version tag stored at VersionAddr. A mismatch at open
// means the layout on disk predates this build; the map is erased and
// reinitialized to defaults before any other field is trusted.
const LayoutVersion byte = 10

// Field addresses. These mirror the memory map of deployed units, so the
// numbering has gaps where multi-byte fields sit.
const (
	VersionAddr          = 0x00 // 8 bits
	ControlRegisterAddr  = 0x01 // 8 bits
	ResetCountAddr       = 0x02 // 32 bits
	DailyPumpingMinsAddr = 0x03 // 16 bits
	PumpingStartAddr     = 0x05 // 32 bits, unix time
	LastResponseAddr     = 0x09 // 32 bits, unix time
	TimeZoneOffsetAddr   = 0x0A // 8 bits, signed hour offset
)

// DefaultTimeZoneOffset is the base offset written on first boot (US Eastern
// standard time, where these units are deployed).
const DefaultTimeZoneOffset = -5

// Flags is the decoded control register. Bit positions are fixed for
// compatibility with storage already in the field; see Byte.
type Flags struct {
	LowPowerMode bool
	Pumping      bool
	SolarMode    bool
	VerboseMode  bool
	PumpLockout  bool
}

// Byte serializes the flags to the single persisted control-register byte.
// Bit 0: low power, bit 1: pumping, bit 2: solar, bit 3: verbose,
// bit 4: pump lockout. Bits 5-7 are reserved and always zero.
func (f Flags) Byte() byte {
	var b byte
	if f.LowPowerMode {
		b |= 1 << 0
	}
	if f.Pumping {
		b |= 1 << 1
	}
	if f.SolarMode {
		b |= 1 << 2
	}
	if f.VerboseMode {
		b |= 1 << 3
	}
	if f.PumpLockout {
		b |= 1 << 4
	}
	return b
}

// FlagsFromByte decodes a control-register byte. Reserved bits are ignored.
func FlagsFromByte(b byte) Flags {
	return Flags{
		LowPowerMode: b&(1<<0) != 0,
		Pumping:      b&(1<<1) != 0,
		SolarMode:    b&(1<<2) != 0,
		VerboseMode:  b&(1<<3) != 0,
		PumpLockout:  b&(1<<4) != 0,
	}
}

// Store is the persistent register accessor. Every operation is total: a
// store that cannot be reached is a fatal condition at open time, never a
// per-call error, so the controller code reads and writes registers without
// error plumbing.
type Store interface {
	// ControlFlags returns the decoded control register.
	ControlFlags() Flags

	// PutControlFlags persists the control register.
	PutControlFlags(Flags)

	// ResetCount returns the abnormal-restart counter.
	ResetCount() uint32

	// PutResetCount persists the abnormal-restart counter.
	PutResetCount(uint32)

	// DailyPumpingMins returns the accumulated pumping minutes for the
	// current local day.
	DailyPumpingMins() uint16

	// PutDailyPumpingMins persists the daily pumping minutes.
	PutDailyPumpingMins(uint16)

	// PumpingStart returns the start time of the open pump session.
	// Only meaningful while the Pumping flag is set.
	PumpingStart() time.Time

	// PutPumpingStart persists the pump-session start time.
	PutPumpingStart(time.Time)

	// LastResponse returns the time of the last successful report
	// acknowledgment.
	LastResponse() time.Time

	// PutLastResponse persists the last successful acknowledgment time.
	PutLastResponse(time.Time)

	// TimeZoneOffset returns the configured base hour offset from UTC.
	TimeZoneOffset() int

	// PutTimeZoneOffset persists the base hour offset.
	PutTimeZoneOffset(int)

	// Erase resets every register to its default. It is invoked by operator
	// command, and internally on a layout-version mismatch; it is never
	// automatic otherwise.
	Erase()
}
