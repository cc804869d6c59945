// Package nvm emulates the non-volatile parameter storage: one fixed-width
// record per descriptor index in a contiguous address range. Records carry
// only the numeric value; token identity is recovered from the live
// descriptor table, never stored durably.
package nvm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// RecordLen is the fixed width of one durable record in bytes.
const RecordLen = 8

// ErrSlotRange is returned for reads or writes outside the store's bounds.
var ErrSlotRange = errors.New("nvm: slot index out of range")

// Store is a durable slot array addressed by descriptor index.
type Store interface {
	// ReadValue returns the value stored at slot i.
	ReadValue(i int) (float64, error)
	// WriteValue stores v at slot i.
	WriteValue(i int, v float64) error
	// Slots returns the number of addressable slots.
	Slots() int
}

// File is a Store backed by a flat file, RecordLen bytes per slot,
// little-endian float64. A fresh or short file reads as zeroes, which never
// matches a real version stamp and so triggers default initialization.
type File struct {
	f     *os.File
	slots int
}

// Open opens or creates a file-backed store with the given slot count.
func Open(path string, slots int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("nvm: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("nvm: stat %s: %w", path, err)
	}
	want := int64(slots * RecordLen)
	if info.Size() < want {
		if err := f.Truncate(want); err != nil {
			f.Close()
			return nil, fmt.Errorf("nvm: size %s: %w", path, err)
		}
	}
	return &File{f: f, slots: slots}, nil
}

// Slots returns the number of addressable slots.
func (s *File) Slots() int { return s.slots }

// ReadValue returns the value stored at slot i.
func (s *File) ReadValue(i int) (float64, error) {
	if i < 0 || i >= s.slots {
		return 0, ErrSlotRange
	}
	var rec [RecordLen]byte
	if _, err := s.f.ReadAt(rec[:], int64(i*RecordLen)); err != nil {
		return 0, fmt.Errorf("nvm: read slot %d: %w", i, err)
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(rec[:])), nil
}

// WriteValue stores v at slot i.
func (s *File) WriteValue(i int, v float64) error {
	if i < 0 || i >= s.slots {
		return ErrSlotRange
	}
	var rec [RecordLen]byte
	binary.LittleEndian.PutUint64(rec[:], math.Float64bits(v))
	if _, err := s.f.WriteAt(rec[:], int64(i*RecordLen)); err != nil {
		return fmt.Errorf("nvm: write slot %d: %w", i, err)
	}
	return nil
}

// Close flushes and closes the backing file.
func (s *File) Close() error {
	if err := s.f.Sync(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

// Mem is an in-memory Store used by tests and by simulation runs that do not
// persist across restarts.
type Mem struct {
	vals []float64
}

// NewMem returns a zeroed in-memory store with the given slot count.
func NewMem(slots int) *Mem {
	return &Mem{vals: make([]float64, slots)}
}

// Slots returns the number of addressable slots.
func (m *Mem) Slots() int { return len(m.vals) }

// ReadValue returns the value stored at slot i.
func (m *Mem) ReadValue(i int) (float64, error) {
	if i < 0 || i >= len(m.vals) {
		return 0, ErrSlotRange
	}
	return m.vals[i], nil
}

// WriteValue stores v at slot i.
func (m *Mem) WriteValue(i int, v float64) error {
	if i < 0 || i >= len(m.vals) {
		return ErrSlotRange
	}
	m.vals[i] = v
	return nil
}

// Dump writes one line per slot in [start, end) to w, eight raw bytes plus
// the decoded value, for bench diagnostics.
func Dump(w io.Writer, s Store, start, end int) error {
	for i := start; i < end && i < s.Slots(); i++ {
		v, err := s.ReadValue(i)
		if err != nil {
			return err
		}
		var rec [RecordLen]byte
		binary.LittleEndian.PutUint64(rec[:], math.Float64bits(v))
		fmt.Fprintf(w, "slot %3d  % x  %1.2f\n", i, rec[:], v)
	}
	return nil
}
