package nand

import "github.com/ardnew/softnand/pkg"

// badBlockPages are the pages whose spare-area marker byte classifies a
// block. Factory marking uses the first two pages; the indices are fixed
// by the device family.
var badBlockPages = [2]uint32{0, 1}

// IsBadBlock classifies a block from its spare-area markers. A block is
// bad if the marker byte of either checked page is not in the erased
// state, or if the marker cannot be read at all. The scan short-circuits
// on the first bad signal.
func (d *Driver) IsBadBlock(block uint32) bool {
	var spare [spareScratchSize]byte

	for _, page := range badBlockPages {
		if err := d.ReadPage(block, page, nil, spare[:d.spec.SpareSize]); err != nil {
			pkg.MetricBadBlocks.Inc()
			pkg.LogWarn(pkg.ComponentNAND, "bad block: marker unreadable",
				"block", block, "page", page, "err", err)
			return true
		}
		if spare[spareBadBlockOff] != erasedByte {
			pkg.MetricBadBlocks.Inc()
			pkg.LogInfo(pkg.ComponentNAND, "bad block: marker set",
				"block", block, "page", page,
				"marker", spare[spareBadBlockOff])
			return true
		}
	}
	return false
}
