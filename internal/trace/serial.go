package trace

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// OpenSerial opens a serial port for use as a trace sink, so diagnostics
// can go to a debug UART instead of stderr. 8N1 framing.
func OpenSerial(device string, baud int) (io.WriteCloser, error) {
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open trace port %s: %w", device, err)
	}
	return port, nil
}
