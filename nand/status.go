package nand

import (
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ardnew/softnand/pkg"
)

// DefaultReadyPollBudget bounds ready/busy line polls.
const DefaultReadyPollBudget = 1024

// DefaultStatusPollBudget bounds status-register polls after a program
// or erase confirm.
const DefaultStatusPollBudget = 2

// errStatusFail marks the status-register error bit; callers map it to
// the operation-specific failure.
var errStatusFail = errors.New("status register error bit set")

// WaitReady polls the ready/busy line until the chip reports ready,
// pacing polls with exponential backoff, and gives up after the
// configured budget.
func (d *Driver) WaitReady() error {
	if d.tr.Ready() {
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Microsecond
	b.MaxInterval = 100 * time.Microsecond
	b.MaxElapsedTime = 0
	b.Reset()

	for n := 0; n < d.cfg.ReadyPollBudget; n++ {
		if d.tr.Ready() {
			return nil
		}
		time.Sleep(b.NextBackOff())
	}

	pkg.MetricStatusTimeout.Inc()
	pkg.LogWarn(pkg.ComponentNAND, "ready line timeout")
	return pkg.ErrReadyTimeout
}

// pollStatus waits for the ready line, then samples the status register
// until the device reports ready or error, or the iteration budget runs
// out. Budget exhaustion is a timeout outcome distinct from a device
// error.
func (d *Driver) pollStatus() error {
	if err := d.WaitReady(); err != nil {
		return err
	}

	for n := 0; n < d.cfg.StatusPollBudget; n++ {
		d.tr.WriteCommand(cmdReadStatus)
		st := d.tr.ReadData()

		if st&statusError != 0 {
			return errStatusFail
		}
		if st&statusReady != 0 {
			return nil
		}
	}

	pkg.MetricStatusTimeout.Inc()
	pkg.LogWarn(pkg.ComponentNAND, "status poll timeout")
	return pkg.ErrReadyTimeout
}

// Sync drains the outstanding asynchronous program or erase by polling
// status to completion. prevCommand is the confirm command of the
// operation being drained; it is accepted for interface compatibility
// and not interpreted.
func (d *Driver) Sync(prevCommand byte) error {
	d.inFlight = false

	err := d.pollStatus()
	if errors.Is(err, errStatusFail) {
		return pkg.ErrNotReady
	}
	return err
}
