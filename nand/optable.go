package nand

// Ops is the operation table consumed by the host flash-management
// framework. Each entry wraps the corresponding Driver method; the
// framework installs the table once per chip at registration.
//
// Sync is nil when the driver runs synchronous completion: every program
// and erase then verifies status before returning and there is never an
// outstanding operation to drain.
type Ops struct {
	Open       func() error
	Close      func() error
	ReadPage   func(block, page uint32, data, spare []byte) error
	ReadBytes  func(block, page uint32, buf []byte) error
	WritePage  func(block, page uint32, data, spare []byte) error
	WriteBytes func(block, page uint32, buf []byte) error
	Erase      func(block uint32) error
	IsBadBlock func(block uint32) bool
	Sync       func(prevCommand byte) error
}

// Ops builds the operation table for this driver.
func (d *Driver) Ops() Ops {
	ops := Ops{
		Open:       d.Open,
		Close:      d.Close,
		ReadPage:   d.ReadPage,
		ReadBytes:  d.ReadBytes,
		WritePage:  d.WritePage,
		WriteBytes: d.WriteBytes,
		Erase:      d.Erase,
		IsBadBlock: d.IsBadBlock,
	}
	if d.cfg.Async {
		ops.Sync = d.Sync
	}
	return ops
}
