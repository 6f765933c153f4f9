package bridge

import (
	"time"

	"go.bug.st/serial"

	"github.com/ardnew/softnand/pkg"
)

// Frame opcodes understood by the jig.
const (
	opCommand = 0x01 // value: command byte (CLE cycle)
	opAddress = 0x02 // value: address byte (ALE cycle)
	opRead    = 0x03 // reply: data byte
	opWrite   = 0x04 // value: data byte
	opReady   = 0x05 // reply: nonzero when ready
)

// DefaultBaudRate matches the jig firmware.
const DefaultBaudRate = 115200

// readTimeout bounds a reply wait so a wedged jig cannot hang the
// driver's poll loops.
const readTimeout = 250 * time.Millisecond

// Transport tunnels phase operations over a serial port.
//
// Phase primitives cannot report errors, so link failures are logged and
// reads degrade to the erased-bus value 0xFF. The ready probe degrades
// to busy, which the driver's bounded polling converts into a timeout.
type Transport struct {
	port serial.Port
}

// Open connects to the jig on the named port.
func Open(device string, baud int) (*Transport, error) {
	if baud == 0 {
		baud = DefaultBaudRate
	}
	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, err
	}
	return &Transport{port: port}, nil
}

// New wraps an already-open serial port.
func New(port serial.Port) *Transport {
	return &Transport{port: port}
}

// Close releases the serial port.
func (t *Transport) Close() error {
	return t.port.Close()
}

// send writes one frame to the jig.
func (t *Transport) send(op, val byte) {
	if _, err := t.port.Write([]byte{op, val}); err != nil {
		pkg.LogError(pkg.ComponentBridge, "frame write failed",
			"op", op, "err", err)
	}
}

// exchange writes one frame and reads the single reply byte.
func (t *Transport) exchange(op, val byte) (byte, bool) {
	t.send(op, val)
	var reply [1]byte
	n, err := t.port.Read(reply[:])
	if err != nil || n == 0 {
		pkg.LogError(pkg.ComponentBridge, "reply read failed",
			"op", op, "n", n, "err", err)
		return 0, false
	}
	return reply[0], true
}

// WriteCommand latches a command byte on the remote bus.
func (t *Transport) WriteCommand(cmd byte) {
	t.send(opCommand, cmd)
}

// WriteAddress latches an address byte on the remote bus.
func (t *Transport) WriteAddress(addr byte) {
	t.send(opAddress, addr)
}

// ReadData reads one byte from the remote data-phase address.
func (t *Transport) ReadData() byte {
	b, ok := t.exchange(opRead, 0)
	if !ok {
		return 0xFF
	}
	return b
}

// ReadData32 reads one little-endian word, one bus cycle per byte. The
// jig's bus is 8 bits wide; word access gains nothing over the link.
func (t *Transport) ReadData32() uint32 {
	b0 := uint32(t.ReadData())
	b1 := uint32(t.ReadData())
	b2 := uint32(t.ReadData())
	b3 := uint32(t.ReadData())
	return b0 | b1<<8 | b2<<16 | b3<<24
}

// WriteData writes one byte to the remote data-phase address.
func (t *Transport) WriteData(b byte) {
	t.send(opWrite, b)
}

// WriteData32 writes one little-endian word, one bus cycle per byte.
func (t *Transport) WriteData32(w uint32) {
	t.WriteData(byte(w))
	t.WriteData(byte(w >> 8))
	t.WriteData(byte(w >> 16))
	t.WriteData(byte(w >> 24))
}

// Ready probes the remote ready/busy line.
func (t *Transport) Ready() bool {
	b, ok := t.exchange(opReady, 0)
	return ok && b != 0
}
