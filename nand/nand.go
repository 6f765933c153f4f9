package nand

import (
	"github.com/ardnew/softnand/nand/hal"
	"github.com/ardnew/softnand/pkg"
)

// Config carries construction-time driver policy. The zero value selects
// synchronous completion and the platform defaults for every budget.
type Config struct {
	// Async selects asynchronous completion for program and erase: the
	// operation returns immediately after the confirm command, deferring
	// status verification to an explicit Sync. At most one asynchronous
	// operation may be outstanding per chip.
	Async bool

	// ReadChannel and WriteChannel are the offload engines for the two
	// transfer directions. Either may be nil; transfers in that
	// direction then always take the CPU path.
	ReadChannel  hal.OffloadChannel
	WriteChannel hal.OffloadChannel

	// OffloadThreshold is the lowest buffer address reachable by the
	// offload engine. Zero selects DefaultOffloadThreshold.
	OffloadThreshold uintptr

	// OffloadPollBudget bounds busy-polls on offload channel state.
	// Zero selects DefaultOffloadPollBudget.
	OffloadPollBudget int

	// StatusPollBudget bounds status-register polls after a program or
	// erase. Zero selects DefaultStatusPollBudget.
	StatusPollBudget int

	// ReadyPollBudget bounds ready/busy line polls. Zero selects
	// DefaultReadyPollBudget.
	ReadyPollBudget int
}

// Driver is the low-level driver for one physical NAND chip.
//
// Driver methods are not safe for concurrent use; the caller serializes
// access per chip. The chip geometry starts at the conservative default
// and is resolved exactly once during Open.
type Driver struct {
	tr     hal.PhaseTransport
	eccEng hal.ECCEngine // nil when the transport has no parity accumulator
	sel    selector
	spec   ChipSpec
	cfg    Config

	opened   bool
	inFlight bool // asynchronous program/erase awaiting Sync
}

// New creates a driver over the given phase transport. ECC verification
// is in effect iff the transport implements [hal.ECCEngine].
func New(tr hal.PhaseTransport, cfg Config) *Driver {
	if cfg.OffloadThreshold == 0 {
		cfg.OffloadThreshold = DefaultOffloadThreshold
	}
	if cfg.OffloadPollBudget == 0 {
		cfg.OffloadPollBudget = DefaultOffloadPollBudget
	}
	if cfg.StatusPollBudget == 0 {
		cfg.StatusPollBudget = DefaultStatusPollBudget
	}
	if cfg.ReadyPollBudget == 0 {
		cfg.ReadyPollBudget = DefaultReadyPollBudget
	}

	d := &Driver{
		tr:   tr,
		spec: DefaultSpec(),
		cfg:  cfg,
	}
	d.eccEng, _ = tr.(hal.ECCEngine)
	d.sel = selector{
		tr:         tr,
		rd:         cfg.ReadChannel,
		wr:         cfg.WriteChannel,
		threshold:  cfg.OffloadThreshold,
		pollBudget: cfg.OffloadPollBudget,
	}
	return d
}

// Spec returns the chip geometry. Before Open it is the conservative
// default; afterwards it is the geometry resolved from the chip's
// identification record.
func (d *Driver) Spec() ChipSpec {
	return d.spec
}

// Open resets the chip, reads its identification record, and resolves
// the geometry. It runs exactly once per chip; reopening an open driver
// is a no-op.
func (d *Driver) Open() error {
	if d.opened {
		return nil
	}

	if err := d.Reset(); err != nil {
		return err
	}
	if err := d.WaitReady(); err != nil {
		return err
	}

	id, err := d.ReadID()
	if err != nil {
		return err
	}

	spec := DecodeID(id).Spec()
	if err := spec.Validate(); err != nil {
		pkg.LogError(pkg.ComponentNAND, "identification rejected",
			"id", id.String(), "err", err)
		return err
	}
	d.spec = spec
	d.opened = true

	name := id.DeviceName()
	if name == "" {
		name = "unknown"
	}
	pkg.LogInfo(pkg.ComponentNAND, "chip identified",
		"id", id.String(),
		"type", name,
		"page", d.spec.PageSize,
		"data", d.spec.DataSize,
		"spare", d.spec.SpareSize,
		"pages_per_block", d.spec.PagesPerBlock,
		"blocks", d.spec.NumBlocks,
		"planes", d.spec.Planes,
		"max_bad_blocks", d.spec.MaxBadBlocks)
	return nil
}

// Close releases the chip. The device itself needs no shutdown sequence.
func (d *Driver) Close() error {
	d.opened = false
	return nil
}

// ReadID issues the read-ID command and returns the five-byte
// identification record.
func (d *Driver) ReadID() (ID, error) {
	if err := d.claim(); err != nil {
		return ID{}, err
	}
	d.tr.WriteCommand(cmdReadID)
	d.tr.WriteAddress(0x00)
	return ID{
		Maker:  d.tr.ReadData(),
		Device: d.tr.ReadData(),
		ID3:    d.tr.ReadData(),
		ID4:    d.tr.ReadData(),
		ID5:    d.tr.ReadData(),
	}, nil
}

// Reset sends the reset command. Fire-and-forget: the caller must
// WaitReady before issuing further operations. Reset failures are only
// detectable by a later status read.
func (d *Driver) Reset() error {
	if err := d.claim(); err != nil {
		return err
	}
	d.tr.WriteCommand(cmdReset)
	return nil
}

// claim rejects a new operation while an asynchronous program or erase
// is still outstanding. The single-outstanding contract is the caller's
// to honor; this check only makes violations visible.
func (d *Driver) claim() error {
	if d.inFlight {
		return pkg.ErrOpInFlight
	}
	return nil
}

// rowAddress computes the device-internal linear page index.
func (d *Driver) rowAddress(block, page uint32) uint32 {
	return page + block*d.spec.PagesPerBlock
}

// writeRow emits the row address cycles. Chips addressing more than 64Ki
// pages take a third cycle.
func (d *Driver) writeRow(row uint32) {
	d.tr.WriteAddress(byte(row))
	d.tr.WriteAddress(byte(row >> 8))
	if uint64(d.spec.PagesPerBlock)*uint64(d.spec.NumBlocks) > 1<<16 {
		d.tr.WriteAddress(byte(row >> 16))
	}
}
