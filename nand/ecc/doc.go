// Package ecc implements the single-bit Hamming error-correcting code
// used by the softnand driver to protect page data.
//
// A page's parity is a 32-bit codeword with 28 meaningful bits: 14
// interleaved pairs of complementary parities. Pairs 0-2 cover the bit
// index within a byte, pairs 3-13 cover the byte index within the page.
// The stored encoding is inverted; both the computed and stored codewords
// are bit-complemented before comparison.
//
// [Correct] locates and repairs a single flipped bit from the syndrome
// (the XOR difference of the two codewords), distinguishes a corrupted
// parity word from corrupted data, and rejects anything beyond single-bit
// capability. [Calc] produces the matching codeword in software; hardware
// parity accumulators produce the same value over the data phase.
//
// The bit-index decode is a fixed mapping. It is pinned by unit tests
// against literal syndrome values; any deviation silently corrupts the
// wrong bit.
package ecc
