package ecc

import "math/bits"

// Result is the outcome of an ECC verification.
type Result int

// Verification outcomes.
const (
	None          Result = iota // Codewords agree; data is clean
	Corrected                   // Single-bit error located and repaired
	ParityError                 // The parity word itself is corrupted
	Uncorrectable               // Errors beyond single-bit capability
)

// String returns a human-readable outcome name.
func (r Result) String() string {
	switch r {
	case None:
		return "no error"
	case Corrected:
		return "corrected"
	case ParityError:
		return "parity self-error"
	case Uncorrectable:
		return "uncorrectable"
	default:
		return "unknown"
	}
}

const (
	mask28   = 0x0FFFFFFF // 28 valid parity bits
	maskHalf = 0x05555555 // one polarity of the 14 parity pairs
)

// Correct verifies data against its parity codewords and repairs a
// single-bit error in place.
//
// calc is the codeword computed over data as read; stored is the codeword
// recorded when the page was written. Both are in the inverted stored
// encoding. A [ParityError] result means the parity word, not the data,
// holds the error; the caller should retry against the redundant parity
// copy.
func Correct(calc, stored uint32, data []byte) Result {
	calc ^= 0xFFFFFFFF
	stored ^= 0xFFFFFFFF
	syndrome := (calc ^ stored) & mask28

	if syndrome == 0 {
		return None
	}

	odd := syndrome & maskHalf         // 14 odd parity bits
	even := (syndrome >> 1) & maskHalf // 14 even parity bits

	if odd^even == maskHalf { // 1-bit correctable error?
		bitNum := even&0x01 |
			even>>1&0x02 |
			even>>2&0x04

		byteAddr := even>>6&0x001 |
			even>>7&0x002 |
			even>>8&0x004 |
			even>>9&0x008 |
			even>>10&0x010 |
			even>>11&0x020 |
			even>>12&0x040 |
			even>>13&0x080 |
			even>>14&0x100 |
			even>>15&0x200 |
			even>>16&0x400

		if int(byteAddr) >= len(data) {
			return Uncorrectable
		}
		data[byteAddr] ^= 1 << bitNum

		return Corrected
	}

	if bits.OnesCount32(syndrome) == 1 { // error in the parity itself
		return ParityError
	}

	return Uncorrectable
}

// Calc computes the parity codeword over data in the stored encoding.
//
// Each data bit contributes to all 14 parity pairs: the pair's odd bit
// when the corresponding bit of its page-relative bit address is set, the
// even bit otherwise. data may cover at most 2048 bytes (11 byte-address
// bits).
func Calc(data []byte) uint32 {
	var p uint32
	for i, d := range data {
		if d == 0 {
			continue
		}
		for b := uint32(0); b < 8; b++ {
			if d>>b&1 == 0 {
				continue
			}
			addr := uint32(i)<<3 | b
			for k := uint32(0); k < 14; k++ {
				if addr>>k&1 == 1 {
					p ^= 1 << (2*k + 1)
				} else {
					p ^= 1 << (2 * k)
				}
			}
		}
	}
	return p
}
