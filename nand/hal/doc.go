// Package hal defines the Hardware Abstraction Layer for the softnand
// driver core.
//
// The driver speaks to a raw NAND device through four logical addresses
// (command-phase write, address-phase write, data-phase read, data-phase
// write) plus a ready/busy level signal. [PhaseTransport] captures exactly
// this surface; platform vendors implement it over their memory controller
// to enable softnand on their hardware.
//
// Two optional capabilities extend a transport:
//
//   - [ECCEngine]: a hardware parity accumulator computing a 32-bit
//     Hamming codeword over data-phase traffic while enabled.
//   - [OffloadChannel]: a hardware-assisted bulk copy engine between the
//     data-phase address and host memory, one channel per direction.
//
// A transport lacking either capability still works: the driver falls back
// to software-visible paths (no ECC verification, CPU-driven copies).
package hal
