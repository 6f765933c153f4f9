package nand

import (
	"encoding/binary"
	"unsafe"

	"github.com/ardnew/softnand/nand/hal"
	"github.com/ardnew/softnand/pkg"
)

// DefaultOffloadThreshold is the lowest buffer address reachable by the
// offload engine. Buffers below it always take the CPU path. The default
// matches the on-chip SRAM base of the reference platform.
const DefaultOffloadThreshold uintptr = 0x20000000

// DefaultOffloadPollBudget bounds the busy-polls waiting for an offload
// channel to quiesce, arm, and complete.
const DefaultOffloadPollBudget = 0x100000

// selector moves data-phase bursts between host memory and the device,
// choosing the CPU path or the offload path per transfer.
//
// Eligibility for the offload path is decided purely by the buffer's
// start address: only memory at or above the threshold is reachable by
// the engine. Size and alignment select the transfer granularity, never
// the path.
type selector struct {
	tr         hal.PhaseTransport
	rd         hal.OffloadChannel // device -> memory
	wr         hal.OffloadChannel // memory -> device
	threshold  uintptr
	pollBudget int
}

func bufAddr(buf []byte) uintptr {
	return uintptr(unsafe.Pointer(&buf[0]))
}

// read fills buf from the data-phase address.
func (s *selector) read(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	if s.rd != nil && bufAddr(buf) >= s.threshold {
		return s.offload(s.rd, buf)
	}
	s.directRead(buf)
	return nil
}

// write drains buf to the data-phase address.
func (s *selector) write(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	if s.wr != nil && bufAddr(buf) >= s.threshold {
		return s.offload(s.wr, buf)
	}
	s.directWrite(buf)
	return nil
}

// directRead copies byte-wise until the buffer address is 4-byte aligned,
// 32-bit words for the bulk, then trailing bytes. Word access on an
// unaligned buffer would fault on the underlying bus.
func (s *selector) directRead(buf []byte) {
	i := 0
	for ; i < len(buf) && (bufAddr(buf)+uintptr(i))&0x03 != 0; i++ {
		buf[i] = s.tr.ReadData()
	}
	for ; i+4 <= len(buf); i += 4 {
		binary.LittleEndian.PutUint32(buf[i:], s.tr.ReadData32())
	}
	for ; i < len(buf); i++ {
		buf[i] = s.tr.ReadData()
	}
}

func (s *selector) directWrite(buf []byte) {
	i := 0
	for ; i < len(buf) && (bufAddr(buf)+uintptr(i))&0x03 != 0; i++ {
		s.tr.WriteData(buf[i])
	}
	for ; i+4 <= len(buf); i += 4 {
		s.tr.WriteData32(binary.LittleEndian.Uint32(buf[i:]))
	}
	for ; i < len(buf); i++ {
		s.tr.WriteData(buf[i])
	}
}

// offload runs one transfer on ch covering buf. Word granularity requires
// both the buffer address and the size to be 4-byte aligned.
func (s *selector) offload(ch hal.OffloadChannel, buf []byte) error {
	g := hal.GranularityWord
	if bufAddr(buf)&0x03 != 0 || len(buf)&0x03 != 0 {
		g = hal.GranularityByte
	}

	// The channel is a singleton per direction and not reentrant: any
	// prior transfer must fully disable before reconfiguring.
	if !s.pollFor(func() bool { return !ch.Enabled() }) {
		pkg.MetricTransferTimeout.Inc()
		pkg.LogWarn(pkg.ComponentXfer, "offload quiesce timeout", "len", len(buf))
		return pkg.ErrTransferTimeout
	}

	if err := ch.Configure(buf, g); err != nil {
		return err
	}
	ch.ClearComplete()
	ch.Enable()

	// A finished transfer drops Enabled on its own; accept either signal
	// as evidence the engine armed.
	if !s.pollFor(func() bool { return ch.Enabled() || ch.Complete() }) {
		pkg.MetricTransferTimeout.Inc()
		pkg.LogWarn(pkg.ComponentXfer, "offload command timeout",
			"len", len(buf), "granularity", g.String())
		return pkg.ErrTransferTimeout
	}
	if !s.pollFor(ch.Complete) {
		pkg.MetricTransferTimeout.Inc()
		pkg.LogWarn(pkg.ComponentXfer, "offload completion timeout",
			"len", len(buf), "granularity", g.String())
		return pkg.ErrTransferTimeout
	}
	return nil
}

// pollFor busy-polls cond up to the configured budget.
func (s *selector) pollFor(cond func() bool) bool {
	for n := 0; n < s.pollBudget; n++ {
		if cond() {
			return true
		}
	}
	return false
}
