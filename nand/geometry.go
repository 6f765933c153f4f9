package nand

import "fmt"

// ID is the identification record returned by the read-ID command: maker
// and device codes plus three geometry-encoding bytes. It is consumed
// immediately to resolve the chip geometry and not retained.
type ID struct {
	Maker  byte
	Device byte
	ID3    byte
	ID4    byte
	ID5    byte
}

// String formats the raw identification bytes.
func (id ID) String() string {
	return fmt.Sprintf("%02X,%02X,%02X,%02X,%02X",
		id.Maker, id.Device, id.ID3, id.ID4, id.ID5)
}

// DeviceName returns the part number of a recognized device class, or ""
// for unknown parts. Unknown parts still resolve through the geometry
// bit-fields.
func (id ID) DeviceName() string {
	type key struct{ maker, device, id3, id4 byte }
	names := map[key]string{
		{0xEC, 0xF1, 0x80, 0x15}: "K9F1G08U0A",
		{0xEC, 0xF1, 0x00, 0x95}: "K9F1G08U0B/K9F1G08U0C",
		{0xEC, 0xF1, 0x00, 0x15}: "K9F1G08U0D",
		{0xAD, 0xF1, 0x80, 0x1D}: "HY27UF081G2A",
	}
	return names[key{id.Maker, id.Device, id.ID3, id.ID4}]
}

// Info holds the geometry fields decoded from the identification record.
// The bit-to-field mapping is fixed by the device family; every position
// must match exactly.
type Info struct {
	DiesPerCE      uint32 // internal dies behind one chip enable
	CellLevels     uint32 // 2 = SLC, 4 = MLC
	SimulProgPages uint32 // simultaneously programmed pages
	Interleave     bool   // interleaved program support
	CacheProgram   bool   // cache program support
	DataSize       uint32 // data area bytes per page
	BlockSize      uint32 // data bytes per block
	SparePer512    uint32 // spare bytes per 512 data bytes
	BusWidth       uint32 // organization: x8 or x16
	AccessTimeNS   uint32 // minimum serial access time
	Planes         uint32
	PlaneSize      uint32 // bytes per plane
}

// DecodeID extracts the geometry fields from an identification record.
func DecodeID(id ID) Info {
	return Info{
		// 3rd ID byte
		DiesPerCE:      1 << (id.ID3 & 0x03),
		CellLevels:     2 << ((id.ID3 & 0x0C) >> 2),
		SimulProgPages: 1 << ((id.ID3 & 0x30) >> 4),
		Interleave:     id.ID3&0x40 != 0,
		CacheProgram:   id.ID3&0x80 != 0,

		// 4th ID byte
		DataSize:     1024 << (id.ID4 & 0x03),
		BlockSize:    (64 * 1024) << ((id.ID4 & 0x30) >> 4),
		SparePer512:  8 << ((id.ID4 & 0x04) >> 2),
		BusWidth:     8 << ((id.ID4 & 0x40) >> 6),
		AccessTimeNS: 50 >> ((id.ID4 & 0x80) >> 7),

		// 5th ID byte
		Planes:    1 << ((id.ID5 & 0x0C) >> 2),
		PlaneSize: (8 * 1024 * 1024) << ((id.ID5 & 0x70) >> 4),
	}
}

// ChipSpec is the resolved geometry of one physical chip. It is populated
// once at Open from the identification record and read-only afterwards.
type ChipSpec struct {
	DataSize       uint32 // data area bytes per page
	SpareSize      uint32 // spare area bytes per page
	PageSize       uint32 // DataSize + SpareSize
	SectorsPerPage uint32 // 512-byte sectors per page
	PagesPerBlock  uint32
	BlockSize      uint32 // data bytes per block
	NumBlocks      uint32
	DiesPerCE      uint32
	Planes         uint32
	MaxBadBlocks   uint32 // bad-block budget: 2.45% of all blocks
}

// Spec derives the chip specification from decoded geometry fields.
func (n Info) Spec() ChipSpec {
	s := ChipSpec{
		DataSize:  n.DataSize,
		BlockSize: n.BlockSize,
		DiesPerCE: n.DiesPerCE,
		Planes:    n.Planes,
	}
	s.SectorsPerPage = s.DataSize >> 9
	s.SpareSize = n.SparePer512 * s.SectorsPerPage
	s.PageSize = s.DataSize + s.SpareSize
	if s.DataSize > 0 {
		s.PagesPerBlock = s.BlockSize / s.DataSize
	}
	if s.BlockSize > 0 {
		s.NumBlocks = n.PlaneSize / s.BlockSize * n.Planes
	}
	s.MaxBadBlocks = s.NumBlocks * 245 / 10000 // 2.45%, rounded down
	return s
}

// DefaultSpec returns the conservative fallback geometry used before the
// identification record resolves: a 1Gbit SLC part with 2048+64 byte
// pages and 64-page blocks.
func DefaultSpec() ChipSpec {
	return ChipSpec{
		DataSize:       2048,
		SpareSize:      64,
		PageSize:       2048 + 64,
		SectorsPerPage: 4,
		PagesPerBlock:  64,
		BlockSize:      2048 * 64,
		NumBlocks:      1024,
		DiesPerCE:      1,
		Planes:         1,
		MaxBadBlocks:   25,
	}
}

// Validate checks the geometry invariants: all fields strictly positive,
// page size consistent with data plus spare, block size consistent with
// pages per block.
func (s ChipSpec) Validate() error {
	switch {
	case s.DataSize == 0 || s.SpareSize == 0 || s.PageSize == 0,
		s.SectorsPerPage == 0 || s.PagesPerBlock == 0 || s.BlockSize == 0,
		s.NumBlocks == 0 || s.DiesPerCE == 0 || s.Planes == 0:
		return fmt.Errorf("chip spec: zero-valued geometry field: %+v", s)
	case s.PageSize != s.DataSize+s.SpareSize:
		return fmt.Errorf("chip spec: page size %d != data %d + spare %d",
			s.PageSize, s.DataSize, s.SpareSize)
	case s.BlockSize != s.PagesPerBlock*s.DataSize:
		return fmt.Errorf("chip spec: block size %d != %d pages * %d bytes",
			s.BlockSize, s.PagesPerBlock, s.DataSize)
	}
	if s.SpareSize > spareScratchSize {
		return fmt.Errorf("chip spec: spare size %d exceeds scratch capacity %d",
			s.SpareSize, spareScratchSize)
	}
	return nil
}
