package nand

import (
	"encoding/binary"
	"errors"

	"github.com/ardnew/softnand/nand/ecc"
	"github.com/ardnew/softnand/pkg"
)

// minByteCount is the minimum transfer granularity of the byte-granular
// operations: the data path always moves at least one 32-bit word.
const minByteCount = 4

// ReadPage reads the data and/or spare area of one page. At least one of
// data, spare must be non-nil; a present buffer must cover the full area.
//
// When ECC is in effect and data is requested, the page data is verified
// against the parity stored in the spare area and a single-bit error is
// corrected in place. A corrupted primary parity word is retried once
// against the redundant copy before the read is declared uncorrectable.
func (d *Driver) ReadPage(block, page uint32, data, spare []byte) error {
	if data == nil && spare == nil {
		return pkg.ErrInvalidParameter
	}
	if data != nil && len(data) < int(d.spec.DataSize) {
		return pkg.ErrInvalidParameter
	}
	if spare != nil && len(spare) < int(d.spec.SpareSize) {
		return pkg.ErrInvalidParameter
	}
	if err := d.claim(); err != nil {
		return err
	}

	// The parity lives in the spare area, so an ECC-verified data read
	// needs a spare landing zone even when the caller requested none.
	var scratch [spareScratchSize]byte
	if spare == nil && data != nil && d.eccEng != nil {
		spare = scratch[:d.spec.SpareSize]
	}

	d.tr.WriteCommand(cmdReadSetup)
	d.tr.WriteAddress(0x00)
	if data != nil {
		d.tr.WriteAddress(colHighData)
	} else {
		d.tr.WriteAddress(colHighSpare)
	}
	d.writeRow(d.rowAddress(block, page))
	d.tr.WriteCommand(cmdReadConfirm)

	if err := d.WaitReady(); err != nil {
		return err
	}

	if data == nil {
		// Spare-only read: the column offset already positioned us.
		return d.sel.read(spare[:d.spec.SpareSize])
	}

	var calc uint32
	if d.eccEng != nil {
		d.eccEng.EnableECC()
	}
	if err := d.sel.read(data[:d.spec.DataSize]); err != nil {
		return err
	}
	if d.eccEng != nil {
		calc = d.eccEng.ECC() ^ 0xFFFFFFFF
		d.eccEng.DisableECC()
	}

	if spare != nil {
		d.tr.WriteCommand(cmdRandomOut)
		d.tr.WriteAddress(0x00)
		d.tr.WriteAddress(colHighSpare)
		d.tr.WriteCommand(cmdRandomOutConfirm)

		if err := d.sel.read(spare[:d.spec.SpareSize]); err != nil {
			return err
		}
	}

	if d.eccEng != nil {
		return d.verifyECC(calc, spare, data[:d.spec.DataSize], block, page)
	}
	return nil
}

// verifyECC compares the computed parity against the stored codewords
// and repairs a single-bit error. A parity self-error on the primary
// word is retried exactly once against the redundant copy; an unresolved
// retry is treated as uncorrectable.
func (d *Driver) verifyECC(calc uint32, spare, data []byte, block, page uint32) error {
	stored := binary.LittleEndian.Uint32(spare[sparePrimaryECCOff:])
	retried := false

	for {
		if calc == stored {
			return nil
		}
		switch ecc.Correct(calc, stored, data) {
		case ecc.None:
			return nil

		case ecc.Corrected:
			pkg.MetricECCCorrected.Inc()
			pkg.LogInfo(pkg.ComponentNAND, "ECC correction applied",
				"block", block, "page", page)
			return nil

		case ecc.ParityError:
			if !retried {
				retried = true
				stored = binary.LittleEndian.Uint32(spare[spareBackupECCOff:])
				pkg.MetricECCRetry.Inc()
				pkg.LogDebug(pkg.ComponentNAND, "retrying with redundant parity copy",
					"block", block, "page", page)
				continue
			}
			// Retry failed; fall through below.
		}

		pkg.MetricECCUncorrectable.Inc()
		pkg.LogError(pkg.ComponentNAND, "uncorrectable ECC error",
			"block", block, "page", page)
		return pkg.ErrECC
	}
}

// ReadBytes reads len(buf) bytes from the start of a page, bypassing the
// spare area and ECC. The count must be at least the minimum transfer
// granularity of 4 bytes.
func (d *Driver) ReadBytes(block, page uint32, buf []byte) error {
	if buf == nil || len(buf) < minByteCount {
		return pkg.ErrInvalidParameter
	}
	if len(buf) > int(d.spec.DataSize) {
		return pkg.ErrInvalidParameter
	}
	if err := d.claim(); err != nil {
		return err
	}

	d.tr.WriteCommand(cmdReadSetup)
	d.tr.WriteAddress(0x00)
	d.tr.WriteAddress(colHighData)
	d.writeRow(d.rowAddress(block, page))
	d.tr.WriteCommand(cmdReadConfirm)

	if err := d.WaitReady(); err != nil {
		return err
	}
	return d.sel.read(buf)
}

// WritePage programs the data and/or spare area of one page. At least
// one of data, spare must be non-nil; a present buffer must cover the
// full area.
//
// When ECC is in effect and data is written, the computed parity is
// recorded in both the primary and redundant parity slots of the spare
// area before the spare is transferred. An omitted spare buffer is
// synthesized in the erased state so unwritten spare bytes read back as
// 0xFF.
//
// In asynchronous completion mode the call returns after the confirm
// command without verifying status; the caller must Sync before the next
// operation on this chip.
func (d *Driver) WritePage(block, page uint32, data, spare []byte) error {
	if data == nil && spare == nil {
		return pkg.ErrInvalidParameter
	}
	if data != nil && len(data) < int(d.spec.DataSize) {
		return pkg.ErrInvalidParameter
	}
	if spare != nil && len(spare) < int(d.spec.SpareSize) {
		return pkg.ErrInvalidParameter
	}
	if err := d.claim(); err != nil {
		return err
	}

	var scratch [spareScratchSize]byte
	if spare == nil && d.eccEng != nil {
		spare = scratch[:d.spec.SpareSize]
		for i := range spare {
			spare[i] = erasedByte
		}
	}

	d.tr.WriteCommand(cmdProgramSetup)
	d.tr.WriteAddress(0x00)
	if data != nil {
		d.tr.WriteAddress(colHighData)
	} else {
		d.tr.WriteAddress(colHighSpare)
	}
	d.writeRow(d.rowAddress(block, page))

	if data != nil {
		if d.eccEng != nil {
			d.eccEng.EnableECC()
		}
		if err := d.sel.write(data[:d.spec.DataSize]); err != nil {
			return err
		}
		if d.eccEng != nil {
			calc := d.eccEng.ECC() ^ 0xFFFFFFFF
			d.eccEng.DisableECC()

			binary.LittleEndian.PutUint32(spare[sparePrimaryECCOff:], calc)
			binary.LittleEndian.PutUint32(spare[spareBackupECCOff:], calc)
		}

		if spare != nil {
			d.tr.WriteCommand(cmdRandomIn)
			d.tr.WriteAddress(0x00)
			d.tr.WriteAddress(colHighSpare)

			if err := d.sel.write(spare[:d.spec.SpareSize]); err != nil {
				return err
			}
		}
	} else {
		if err := d.sel.write(spare[:d.spec.SpareSize]); err != nil {
			return err
		}
	}

	d.tr.WriteCommand(cmdProgramConfirm)

	return d.finishProgram(pkg.ErrWriteFailed)
}

// WriteBytes programs len(buf) bytes at the start of a page, bypassing
// the spare area and ECC. The count must be at least the minimum
// transfer granularity of 4 bytes.
func (d *Driver) WriteBytes(block, page uint32, buf []byte) error {
	if buf == nil || len(buf) < minByteCount {
		return pkg.ErrInvalidParameter
	}
	if len(buf) > int(d.spec.DataSize) {
		return pkg.ErrInvalidParameter
	}
	if err := d.claim(); err != nil {
		return err
	}

	d.tr.WriteCommand(cmdProgramSetup)
	d.tr.WriteAddress(0x00)
	d.tr.WriteAddress(colHighData)
	d.writeRow(d.rowAddress(block, page))

	if err := d.sel.write(buf); err != nil {
		return err
	}

	d.tr.WriteCommand(cmdProgramConfirm)

	return d.finishProgram(pkg.ErrWriteFailed)
}

// Erase erases one block. The row address is block-granular: the page
// term is zero.
func (d *Driver) Erase(block uint32) error {
	if err := d.claim(); err != nil {
		return err
	}

	d.tr.WriteCommand(cmdEraseSetup)
	d.writeRow(d.rowAddress(block, 0))
	d.tr.WriteCommand(cmdEraseConfirm)

	return d.finishProgram(pkg.ErrEraseFailed)
}

// finishProgram applies the completion policy after a program or erase
// confirm. Synchronous mode polls status to completion, mapping the
// status error bit to failErr; asynchronous mode records the in-flight
// operation and returns immediately.
func (d *Driver) finishProgram(failErr error) error {
	if d.cfg.Async {
		d.inFlight = true
		return nil
	}

	err := d.pollStatus()
	if errors.Is(err, errStatusFail) {
		return failErr
	}
	return err
}
