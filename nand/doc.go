// Package nand implements the command/protocol core of a raw NAND flash
// low-level driver.
//
// A [Driver] owns one physical chip behind a [hal.PhaseTransport]. It
// translates logical (block, page, buffer) requests into the chip's
// command/address/data phase protocol, selects between CPU-driven and
// offloaded data transfers, verifies page data against its Hamming parity
// with a redundant-copy retry, resolves chip geometry from the
// identification record, and classifies bad blocks from spare-area
// markers.
//
// The driver holds no locks: one calling context per chip, by contract.
// The only deferred state is the single outstanding program/erase allowed
// in asynchronous completion mode, drained by [Driver.Sync].
package nand
