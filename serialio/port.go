// Package serialio provides the serial transport and the line discipline
// whose options the serial parameters toggle at runtime.
package serialio

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// Port is the transport surface the controller reads and writes.
// Implementations: native serial, or any io.ReadWriteCloser in tests.
type Port interface {
	io.ReadWriteCloser
}

// Config holds serial port configuration.
type Config struct {
	Device      string // e.g. "/dev/ttyACM0", "COM3"
	Baud        int
	ReadTimeout int // milliseconds, 0 = blocking
}

// DefaultConfig returns the standard controller port settings.
func DefaultConfig(device string) *Config {
	return &Config{
		Device: device,
		Baud:   115200,
	}
}

// Open opens a native serial port.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("serialio: config cannot be nil")
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("serialio: open %s: %w", cfg.Device, err)
	}
	return port, nil
}
