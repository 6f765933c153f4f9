package sim

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/ardnew/softnand/nand/ecc"
	"github.com/ardnew/softnand/nand/hal"
	"github.com/ardnew/softnand/pkg"
)

// Command set interpreted by the simulated chip. Values mirror the bus
// protocol of large-page NAND devices.
const (
	cmdReadSetup        = 0x00
	cmdReadConfirm      = 0x30
	cmdRandomOut        = 0x05
	cmdRandomOutConfirm = 0xE0
	cmdProgramSetup     = 0x80
	cmdProgramConfirm   = 0x10
	cmdRandomIn         = 0x85
	cmdEraseSetup       = 0x60
	cmdEraseConfirm     = 0xD0
	cmdReadStatus       = 0x70
	cmdReadID           = 0x90
	cmdReset            = 0xFF
)

// Status register bits.
const (
	statusError = 0x01
	statusReady = 0x40
)

// mode is the command-latch state of the chip.
type mode uint8

const (
	modeIdle      mode = iota
	modeReadSetup      // collecting read address cycles
	modeReadData       // streaming the page register out
	modeRandomOut      // collecting random-output column cycles
	modeProgSetup      // collecting program address cycles
	modeProgData       // accepting program data
	modeRandomIn       // collecting random-input column cycles
	modeEraseSetup     // collecting erase row cycles
	modeStatus         // next data read returns the status register
	modeReadID         // streaming the identification record
)

// Config describes the geometry and identity of a simulated chip.
type Config struct {
	DataSize      uint32 // data area bytes per page
	SpareSize     uint32 // spare area bytes per page
	PagesPerBlock uint32
	Blocks        uint32
	ID            [5]byte // identification record for READ ID
}

// DefaultConfig models a 1Gbit SLC part (K9F1G08U0A class): 2048+64
// byte pages, 64-page blocks, 1024 blocks.
func DefaultConfig() Config {
	return Config{
		DataSize:      2048,
		SpareSize:     64,
		PagesPerBlock: 64,
		Blocks:        1024,
		ID:            [5]byte{0xEC, 0xF1, 0x80, 0x15, 0x40},
	}
}

// Stats counts confirmed device operations.
type Stats struct {
	Reads    int // read confirms
	Programs int // program confirms
	Erases   int // erase confirms
	Resets   int
}

// Chip is a simulated NAND device. It implements [hal.PhaseTransport]
// and [hal.ECCEngine]; ReadChannel and WriteChannel provide the offload
// capability.
//
// Like the hardware it models, a Chip is not safe for concurrent use.
type Chip struct {
	cfg Config
	mem []byte // blocks * pagesPerBlock * (data+spare), row-major

	state    mode
	addr     [5]byte
	addrN    int
	readBase int // byte offset of the page register being streamed
	pending  []byte
	cursor   int
	status   byte
	idIdx    int

	eccOn  bool
	eccAcc []byte

	busyStuck       bool
	failNextProgram bool
	failNextErase   bool

	stats Stats

	rdCh *Channel
	wrCh *Channel
}

// New creates a simulated chip in the erased state.
func New(cfg Config) *Chip {
	c := &Chip{
		cfg:    cfg,
		mem:    make([]byte, int(cfg.Blocks*cfg.PagesPerBlock*(cfg.DataSize+cfg.SpareSize))),
		status: statusReady,
		eccAcc: make([]byte, 0, cfg.DataSize),
	}
	for i := range c.mem {
		c.mem[i] = 0xFF
	}
	c.rdCh = &Channel{chip: c, toMemory: true}
	c.wrCh = &Channel{chip: c, toMemory: false}
	return c
}

func (c *Chip) pageSize() int {
	return int(c.cfg.DataSize + c.cfg.SpareSize)
}

func (c *Chip) pages() int {
	return int(c.cfg.Blocks * c.cfg.PagesPerBlock)
}

func (c *Chip) latchedCol() int {
	return int(c.addr[0]) | int(c.addr[1])<<8
}

func (c *Chip) latchedRow(from int) int {
	row := 0
	for i := from; i < c.addrN; i++ {
		row |= int(c.addr[i]) << (8 * (i - from))
	}
	return row
}

// WriteCommand latches a command byte and advances the chip state
// machine.
func (c *Chip) WriteCommand(cmd byte) {
	switch cmd {
	case cmdReset:
		c.state = modeIdle
		c.status = statusReady
		c.busyStuck = false
		c.stats.Resets++

	case cmdReadID:
		c.state = modeReadID
		c.addrN = 0
		c.idIdx = 0

	case cmdReadStatus:
		c.state = modeStatus

	case cmdReadSetup:
		c.state = modeReadSetup
		c.addrN = 0

	case cmdReadConfirm:
		if c.state != modeReadSetup {
			pkg.LogDebug(pkg.ComponentSim, "read confirm without setup")
			return
		}
		row := c.latchedRow(2)
		if row >= c.pages() {
			pkg.LogWarn(pkg.ComponentSim, "read row out of range", "row", row)
			c.state = modeIdle
			return
		}
		c.readBase = row * c.pageSize()
		c.cursor = c.latchedCol()
		c.state = modeReadData
		c.stats.Reads++

	case cmdRandomOut:
		if c.state == modeReadData {
			c.state = modeRandomOut
			c.addrN = 0
		}

	case cmdRandomOutConfirm:
		if c.state == modeRandomOut {
			c.cursor = c.latchedCol()
			c.state = modeReadData
		}

	case cmdProgramSetup:
		c.state = modeProgSetup
		c.addrN = 0
		c.pending = nil

	case cmdRandomIn:
		if c.state == modeProgData {
			c.state = modeRandomIn
			c.addrN = 0
		}

	case cmdProgramConfirm:
		if c.state != modeProgData && c.state != modeProgSetup {
			pkg.LogDebug(pkg.ComponentSim, "program confirm without data")
			return
		}
		if c.pending != nil {
			copy(c.mem[c.readBase:c.readBase+c.pageSize()], c.pending)
		}
		c.status = statusReady
		if c.failNextProgram {
			c.status |= statusError
			c.failNextProgram = false
		}
		c.stats.Programs++
		c.state = modeIdle

	case cmdEraseSetup:
		c.state = modeEraseSetup
		c.addrN = 0

	case cmdEraseConfirm:
		if c.state != modeEraseSetup {
			return
		}
		row := c.latchedRow(0)
		if row < c.pages() {
			start := row / int(c.cfg.PagesPerBlock) * int(c.cfg.PagesPerBlock)
			base := start * c.pageSize()
			size := int(c.cfg.PagesPerBlock) * c.pageSize()
			for i := base; i < base+size; i++ {
				c.mem[i] = 0xFF
			}
		}
		c.status = statusReady
		if c.failNextErase {
			c.status |= statusError
			c.failNextErase = false
		}
		c.stats.Erases++
		c.state = modeIdle

	default:
		pkg.LogDebug(pkg.ComponentSim, "unknown command", "cmd", fmt.Sprintf("%#02x", cmd))
	}
}

// WriteAddress latches an address byte. Interpretation depends on the
// pending command: column cycles first for read/program, row cycles only
// for erase, a single dummy cycle for read ID.
func (c *Chip) WriteAddress(addr byte) {
	if c.addrN < len(c.addr) {
		c.addr[c.addrN] = addr
		c.addrN++
	}
	// Random input has no confirm command: data follows the two column
	// cycles directly.
	if c.state == modeRandomIn && c.addrN == 2 {
		c.cursor = c.latchedCol()
		c.state = modeProgData
	}
}

// beginProgram latches the program address and stages the target page.
// The first data cycle after the address phase lands here.
func (c *Chip) beginProgram() {
	row := c.latchedRow(2)
	if row >= c.pages() {
		pkg.LogWarn(pkg.ComponentSim, "program row out of range", "row", row)
		row = 0
	}
	c.readBase = row * c.pageSize()
	c.pending = make([]byte, c.pageSize())
	copy(c.pending, c.mem[c.readBase:c.readBase+c.pageSize()])
	c.cursor = c.latchedCol()
	c.state = modeProgData
}

// ReadData reads one byte from the data-phase address.
func (c *Chip) ReadData() byte {
	switch c.state {
	case modeStatus:
		return c.status

	case modeReadID:
		if c.idIdx < len(c.cfg.ID) {
			b := c.cfg.ID[c.idIdx]
			c.idIdx++
			return b
		}
		return 0x00

	case modeReadData:
		if c.cursor >= c.pageSize() {
			return 0xFF
		}
		b := c.mem[c.readBase+c.cursor]
		c.cursor++
		if c.eccOn {
			c.eccAcc = append(c.eccAcc, b)
		}
		return b

	default:
		pkg.LogDebug(pkg.ComponentSim, "data read in idle state")
		return 0xFF
	}
}

// ReadData32 reads one little-endian word from the data-phase address.
func (c *Chip) ReadData32() uint32 {
	b0 := uint32(c.ReadData())
	b1 := uint32(c.ReadData())
	b2 := uint32(c.ReadData())
	b3 := uint32(c.ReadData())
	return b0 | b1<<8 | b2<<16 | b3<<24
}

// WriteData writes one byte to the data-phase address. Program cycles
// can only clear bits.
func (c *Chip) WriteData(b byte) {
	if c.state == modeProgSetup {
		c.beginProgram()
	}
	if c.state != modeProgData {
		pkg.LogDebug(pkg.ComponentSim, "data write outside program")
		return
	}
	if c.cursor < len(c.pending) {
		c.pending[c.cursor] &= b
		c.cursor++
	}
	if c.eccOn {
		c.eccAcc = append(c.eccAcc, b)
	}
}

// WriteData32 writes one little-endian word to the data-phase address.
func (c *Chip) WriteData32(w uint32) {
	c.WriteData(byte(w))
	c.WriteData(byte(w >> 8))
	c.WriteData(byte(w >> 16))
	c.WriteData(byte(w >> 24))
}

// Ready samples the ready/busy line. Simulated operations complete
// instantly, so the chip is ready unless a stuck-busy fault is active.
func (c *Chip) Ready() bool {
	return !c.busyStuck
}

// EnableECC resets and starts the parity accumulator.
func (c *Chip) EnableECC() {
	c.eccOn = true
	c.eccAcc = c.eccAcc[:0]
}

// DisableECC freezes the parity accumulator.
func (c *Chip) DisableECC() {
	c.eccOn = false
}

// ECC returns the parity register in the inverted hardware convention.
func (c *Chip) ECC() uint32 {
	return ^ecc.Calc(c.eccAcc)
}

// ReadChannel returns the device-to-memory offload channel.
func (c *Chip) ReadChannel() hal.OffloadChannel { return c.rdCh }

// WriteChannel returns the memory-to-device offload channel.
func (c *Chip) WriteChannel() hal.OffloadChannel { return c.wrCh }

// Stats returns the operation counters.
func (c *Chip) Stats() Stats { return c.stats }

// FlipBit injects a single-bit error into the stored image. off is the
// byte offset within the full page: the data area spans [0, DataSize),
// the spare area follows.
func (c *Chip) FlipBit(block, page, off uint32, bit uint8) {
	row := int(block*c.cfg.PagesPerBlock + page)
	c.mem[row*c.pageSize()+int(off)] ^= 1 << bit
}

// MarkBad writes the bad-block marker of the given block.
func (c *Chip) MarkBad(block uint32) {
	row := int(block * c.cfg.PagesPerBlock)
	c.mem[row*c.pageSize()+int(c.cfg.DataSize)] = 0x00
}

// FailNextProgram makes the next program confirm report the status
// error bit.
func (c *Chip) FailNextProgram() { c.failNextProgram = true }

// FailNextErase makes the next erase confirm report the status error
// bit.
func (c *Chip) FailNextErase() { c.failNextErase = true }

// StickBusy pins the ready/busy line busy (true) or releases it.
func (c *Chip) StickBusy(v bool) { c.busyStuck = v }

// SaveImage persists the flash image.
func (c *Chip) SaveImage(fs afero.Fs, path string) error {
	return afero.WriteFile(fs, path, c.mem, 0o644)
}

// LoadImage restores a flash image previously written by SaveImage. The
// image must match the configured geometry exactly.
func (c *Chip) LoadImage(fs afero.Fs, path string) error {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return err
	}
	if len(b) != len(c.mem) {
		return fmt.Errorf("image size %d does not match geometry (%d bytes)",
			len(b), len(c.mem))
	}
	copy(c.mem, b)
	return nil
}

// errChannelBusy reports a Configure on an enabled channel.
var errChannelBusy = errors.New("offload channel enabled")

// Channel is an instantly-completing offload engine. Enable performs the
// whole transfer through the chip's data phase and auto-disables, the
// way a real engine drops its enable bit when the transfer count drains.
type Channel struct {
	chip     *Chip
	toMemory bool

	buf      []byte
	g        hal.Granularity
	enabled  bool
	complete bool
}

// Enabled reports whether the channel is armed or transferring.
func (ch *Channel) Enabled() bool { return ch.enabled }

// Configure programs the channel for one transfer.
func (ch *Channel) Configure(buf []byte, g hal.Granularity) error {
	if ch.enabled {
		return errChannelBusy
	}
	ch.buf = buf
	ch.g = g
	return nil
}

// ClearComplete clears the transfer-complete flag.
func (ch *Channel) ClearComplete() { ch.complete = false }

// Enable arms the channel and runs the transfer to completion.
func (ch *Channel) Enable() {
	ch.enabled = true
	if ch.toMemory {
		for i := range ch.buf {
			ch.buf[i] = ch.chip.ReadData()
		}
	} else {
		for _, b := range ch.buf {
			ch.chip.WriteData(b)
		}
	}
	ch.complete = true
	ch.enabled = false
}

// Complete reports whether the transfer-complete flag is raised.
func (ch *Channel) Complete() bool { return ch.complete }
