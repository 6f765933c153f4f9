package nand

// Command set for large-page NAND devices.
const (
	cmdReadSetup        = 0x00 // first cycle of a page read
	cmdReadConfirm      = 0x30 // read confirm; chip loads the page register
	cmdRandomOut        = 0x05 // reposition output column within the page
	cmdRandomOutConfirm = 0xE0
	cmdProgramSetup     = 0x80 // first cycle of a page program
	cmdProgramConfirm   = 0x10
	cmdRandomIn         = 0x85 // reposition input column within the page
	cmdEraseSetup       = 0x60
	cmdEraseConfirm     = 0xD0
	cmdReadStatus       = 0x70
	cmdReadID           = 0x90
	cmdReset            = 0xFF
)

// Status register bits.
const (
	statusError = 0x01 // program/erase failed
	statusReady = 0x40 // device ready
)

// Column address high bytes. The data area starts at column 0; the spare
// area starts at column 0x800 (2048), so its high address byte is 0x08.
const (
	colHighData  = 0x00
	colHighSpare = 0x08
)

// Spare-area layout. Each 512-byte sector owns 16 spare bytes.
const (
	spareBadBlockOff    = 0  // bad-block marker on pages 0 and 1
	sparePrimaryECCOff  = 8  // primary parity word
	spareBackupECCOff   = 12 // redundant parity copy
	spareBytesPerSector = 16
)

// maxSectorsPerPage bounds the scratch spare buffer synthesized when a
// caller omits the spare argument.
const maxSectorsPerPage = 8

const spareScratchSize = spareBytesPerSector * maxSectorsPerPage

// erasedByte is the value every cell reads after erase.
const erasedByte = 0xFF
