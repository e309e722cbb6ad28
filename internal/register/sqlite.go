package register

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists registers as one row per address in a SQLite file.
// SQLite gives us the power-loss guarantees FRAM gave the old hardware:
// a torn write never surfaces a half-updated value.
//
// Not safe for concurrent use; the controller is the single writer.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the register file at path and validates the
// layout version. On a version mismatch the map is erased and reinitialized
// to defaults. Any I/O failure here is returned; after a successful Open the
// store treats I/O failure as fatal (see fail).
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open register store: %w", err)
	}

	// Synchronous FULL so a put that returns has reached the disk. The
	// register file is a handful of rows; write amplification is irrelevant.
	if _, err := db.Exec("PRAGMA synchronous=FULL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure register store: %w", err)
	}
	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS registers (addr INTEGER PRIMARY KEY, value BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, fmt.Errorf("create register table: %w", err)
	}

	s := &SQLiteStore{db: db}

	version, ok, err := s.read(VersionAddr)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("read layout version: %w", err)
	}
	if !ok || len(version) != 1 || version[0] != LayoutVersion {
		log.Printf("register: layout version mismatch (have %v, want %d), erasing", version, LayoutVersion)
		if err := s.erase(); err != nil {
			db.Close()
			return nil, fmt.Errorf("reinitialize registers: %w", err)
		}
	}

	return s, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) read(addr int) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM registers WHERE addr = ?", addr).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *SQLiteStore) write(addr int, value []byte) error {
	_, err := s.db.Exec("INSERT INTO registers (addr, value) VALUES (?, ?) ON CONFLICT(addr) DO UPDATE SET value = excluded.value", addr, value)
	return err
}

// fail is the post-open I/O failure path. The register store is the device's
// non-volatile memory: if it stops responding mid-run there is nothing the
// control loop can safely do, so we exit and let the service supervisor
// restart us, which re-runs the Open validation.
func fail(op string, err error) {
	log.Fatalf("register: %s: %v", op, err)
}

func (s *SQLiteStore) get(addr int, width int) []byte {
	value, ok, err := s.read(addr)
	if err != nil {
		fail("get", err)
	}
	if !ok || len(value) != width {
		return make([]byte, width)
	}
	return value
}

func (s *SQLiteStore) put(addr int, value []byte) {
	if err := s.write(addr, value); err != nil {
		fail("put", err)
	}
}

// ControlFlags returns the decoded control register.
func (s *SQLiteStore) ControlFlags() Flags {
	return FlagsFromByte(s.get(ControlRegisterAddr, 1)[0])
}

// PutControlFlags persists the control register.
func (s *SQLiteStore) PutControlFlags(f Flags) {
	s.put(ControlRegisterAddr, []byte{f.Byte()})
}

// ResetCount returns the abnormal-restart counter.
func (s *SQLiteStore) ResetCount() uint32 {
	return binary.LittleEndian.Uint32(s.get(ResetCountAddr, 4))
}

// PutResetCount persists the abnormal-restart counter.
func (s *SQLiteStore) PutResetCount(n uint32) {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, n)
	s.put(ResetCountAddr, b)
}

// DailyPumpingMins returns the accumulated pumping minutes for the day.
func (s *SQLiteStore) DailyPumpingMins() uint16 {
	return binary.LittleEndian.Uint16(s.get(DailyPumpingMinsAddr, 2))
}

// PutDailyPumpingMins persists the daily pumping minutes.
func (s *SQLiteStore) PutDailyPumpingMins(n uint16) {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, n)
	s.put(DailyPumpingMinsAddr, b)
}

// PumpingStart returns the start time of the open pump session.
func (s *SQLiteStore) PumpingStart() time.Time {
	return s.getTime(PumpingStartAddr)
}

// PutPumpingStart persists the pump-session start time.
func (s *SQLiteStore) PutPumpingStart(t time.Time) {
	s.putTime(PumpingStartAddr, t)
}

// LastResponse returns the time of the last successful acknowledgment.
func (s *SQLiteStore) LastResponse() time.Time {
	return s.getTime(LastResponseAddr)
}

// PutLastResponse persists the last successful acknowledgment time.
func (s *SQLiteStore) PutLastResponse(t time.Time) {
	s.putTime(LastResponseAddr, t)
}

// TimeZoneOffset returns the configured base hour offset from UTC.
func (s *SQLiteStore) TimeZoneOffset() int {
	return int(int8(s.get(TimeZoneOffsetAddr, 1)[0]))
}

// PutTimeZoneOffset persists the base hour offset.
func (s *SQLiteStore) PutTimeZoneOffset(offset int) {
	s.put(TimeZoneOffsetAddr, []byte{byte(int8(offset))})
}

func (s *SQLiteStore) getTime(addr int) time.Time {
	secs := binary.LittleEndian.Uint32(s.get(addr, 4))
	if secs == 0 {
		return time.Time{}
	}
	return time.Unix(int64(secs), 0).UTC()
}

func (s *SQLiteStore) putTime(addr int, t time.Time) {
	b := make([]byte, 4)
	if !t.IsZero() {
		binary.LittleEndian.PutUint32(b, uint32(t.Unix()))
	}
	s.put(addr, b)
}

// Erase resets every register to its default.
func (s *SQLiteStore) Erase() {
	if err := s.erase(); err != nil {
		fail("erase", err)
	}
}

func (s *SQLiteStore) erase() error {
	if _, err := s.db.Exec("DELETE FROM registers"); err != nil {
		return err
	}
	if err := s.write(VersionAddr, []byte{LayoutVersion}); err != nil {
		return err
	}
	off := int8(DefaultTimeZoneOffset)
	return s.write(TimeZoneOffsetAddr, []byte{byte(off)})
}
