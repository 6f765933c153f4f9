package hal

// Granularity selects the transfer width programmed into an offload
// channel.
type Granularity uint8

// Offload transfer widths.
const (
	GranularityByte Granularity = iota // 8-bit units
	GranularityWord                    // 32-bit units
)

// String returns a human-readable granularity name.
func (g Granularity) String() string {
	switch g {
	case GranularityByte:
		return "byte"
	case GranularityWord:
		return "word"
	default:
		return "unknown"
	}
}

// PhaseTransport is the raw phase primitive the driver core is built on.
//
// Each method maps to one fixed device offset on the memory-controller
// bus. Implementations perform the access and return; all sequencing,
// timing, and completion detection is the driver's responsibility.
//
// The transport is not safe for concurrent use. The driver serializes all
// access per chip (one calling context per chip, by contract).
type PhaseTransport interface {
	// WriteCommand latches a command byte (CLE cycle).
	WriteCommand(cmd byte)

	// WriteAddress latches an address byte (ALE cycle).
	WriteAddress(addr byte)

	// ReadData reads one byte from the data-phase address.
	ReadData() byte

	// ReadData32 reads one 32-bit word from the data-phase address.
	ReadData32() uint32

	// WriteData writes one byte to the data-phase address.
	WriteData(b byte)

	// WriteData32 writes one 32-bit word to the data-phase address.
	WriteData32(w uint32)

	// Ready samples the ready/busy line. True means ready.
	Ready() bool
}

// ECCEngine is the hardware parity accumulator capability.
//
// While enabled, the engine accumulates a 32-bit Hamming codeword over
// every byte moved through the data phase. The register convention is
// inverted: the driver complements the value read from ECC before use.
type ECCEngine interface {
	// EnableECC resets and starts the parity accumulator.
	EnableECC()

	// DisableECC stops the accumulator, freezing the parity register.
	DisableECC()

	// ECC returns the frozen parity register.
	ECC() uint32
}

// OffloadChannel is a hardware bulk-copy engine between the data-phase
// address and host memory. Channels are singleton per direction and are
// not reentrant: a channel must be fully disabled before it is
// reconfigured for a new transfer.
type OffloadChannel interface {
	// Enabled reports whether the channel is armed or actively
	// transferring. A previously started transfer holds the channel
	// enabled until it drains.
	Enabled() bool

	// Configure programs the channel for one transfer covering buf at
	// the given granularity. The channel must be disabled when called.
	Configure(buf []byte, g Granularity) error

	// ClearComplete clears the transfer-complete flag before arming.
	ClearComplete()

	// Enable arms the channel and starts the transfer.
	Enable()

	// Complete reports whether the transfer-complete flag is raised.
	Complete() bool
}
