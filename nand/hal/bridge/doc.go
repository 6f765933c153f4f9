// Package bridge implements the softnand HAL over a serial link to a
// remote test jig.
//
// The jig sits on the device's memory-controller bus and executes phase
// operations on behalf of the driver. Each operation is a two-byte
// frame: an opcode selecting the phase address, and a value byte. Reads
// and the ready probe return a single reply byte.
//
// The bridge implements [hal.PhaseTransport] only. It advertises no ECC
// or offload capability, so drivers on this transport verify nothing in
// hardware and always take the CPU copy path. Intended for bring-up and
// protocol debugging, not throughput.
package bridge
