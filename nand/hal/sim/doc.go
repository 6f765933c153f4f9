// Package sim provides a software model of a large-page NAND chip
// implementing the softnand HAL.
//
// The simulated chip interprets the same command-latch protocol a real
// device would see on the bus: read (00h/30h), random output (05h/E0h),
// program (80h/10h), random input (85h), erase (60h/D0h), status (70h),
// read ID (90h), and reset (FFh). Program cycles can only clear bits and
// erase restores a block to all 0xFF, matching NAND cell behavior.
//
// The chip implements [hal.PhaseTransport] and [hal.ECCEngine], and
// exposes a pair of instantly-completing [hal.OffloadChannel]s. Fault
// injection hooks (bit flips, failed programs, stuck-busy) and operation
// counters support driver testing without hardware. The flash image can
// be persisted to and restored from an [afero.Fs].
package sim
