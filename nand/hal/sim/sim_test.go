package sim

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"

	"github.com/ardnew/softnand/nand/hal"
)

func testConfig() Config {
	return Config{
		DataSize:      64,
		SpareSize:     16,
		PagesPerBlock: 4,
		Blocks:        8,
		ID:            [5]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE},
	}
}

func latchRead(c *Chip, row, col int) {
	c.WriteCommand(cmdReadSetup)
	c.WriteAddress(byte(col))
	c.WriteAddress(byte(col >> 8))
	c.WriteAddress(byte(row))
	c.WriteAddress(byte(row >> 8))
	c.WriteCommand(cmdReadConfirm)
}

func program(c *Chip, row, col int, data []byte) {
	c.WriteCommand(cmdProgramSetup)
	c.WriteAddress(byte(col))
	c.WriteAddress(byte(col >> 8))
	c.WriteAddress(byte(row))
	c.WriteAddress(byte(row >> 8))
	for _, b := range data {
		c.WriteData(b)
	}
	c.WriteCommand(cmdProgramConfirm)
}

func readBack(c *Chip, row, col, n int) []byte {
	latchRead(c, row, col)
	b := make([]byte, n)
	for i := range b {
		b[i] = c.ReadData()
	}
	return b
}

func erase(c *Chip, row int) {
	c.WriteCommand(cmdEraseSetup)
	c.WriteAddress(byte(row))
	c.WriteAddress(byte(row >> 8))
	c.WriteCommand(cmdEraseConfirm)
}

func TestProgramClearsBitsOnly(t *testing.T) {
	c := New(testConfig())

	program(c, 2, 0, []byte{0xF0, 0xFF})
	if got := readBack(c, 2, 0, 2); !bytes.Equal(got, []byte{0xF0, 0xFF}) {
		t.Fatalf("first program = %x", got)
	}

	// A second program over the same cells can only clear bits.
	program(c, 2, 0, []byte{0x0F, 0x00})
	if got := readBack(c, 2, 0, 2); !bytes.Equal(got, []byte{0x00, 0x00}) {
		t.Fatalf("second program = %x, want 0000", got)
	}
}

func TestEraseRestoresBlock(t *testing.T) {
	c := New(testConfig())

	// Rows 4..7 form block 1; row 0 belongs to block 0.
	program(c, 0, 0, []byte{0x11})
	program(c, 5, 0, []byte{0x22})

	erase(c, 5)

	if got := readBack(c, 5, 0, 1)[0]; got != 0xFF {
		t.Errorf("erased cell = %#02x, want 0xFF", got)
	}
	if got := readBack(c, 4, 0, 1)[0]; got != 0xFF {
		t.Errorf("sibling page cell = %#02x, want 0xFF", got)
	}
	if got := readBack(c, 0, 0, 1)[0]; got != 0x11 {
		t.Errorf("other block cell = %#02x, want 0x11", got)
	}
}

func TestReadIDStream(t *testing.T) {
	c := New(testConfig())
	c.WriteCommand(cmdReadID)
	c.WriteAddress(0x00)

	var got [6]byte
	for i := range got {
		got[i] = c.ReadData()
	}
	want := [6]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0x00}
	if got != want {
		t.Fatalf("identification stream = %x, want %x", got, want)
	}
}

func TestStatusRegister(t *testing.T) {
	c := New(testConfig())

	c.WriteCommand(cmdReadStatus)
	if got := c.ReadData(); got != statusReady {
		t.Fatalf("status = %#02x, want %#02x", got, statusReady)
	}

	c.FailNextProgram()
	program(c, 0, 0, []byte{0x00})
	c.WriteCommand(cmdReadStatus)
	if got := c.ReadData(); got != statusReady|statusError {
		t.Fatalf("status after failed program = %#02x, want %#02x",
			got, statusReady|statusError)
	}

	// The next confirm clears the error bit.
	program(c, 1, 0, []byte{0x00})
	c.WriteCommand(cmdReadStatus)
	if got := c.ReadData(); got != statusReady {
		t.Fatalf("status = %#02x, want %#02x", got, statusReady)
	}
}

func TestRandomOutput(t *testing.T) {
	c := New(testConfig())
	page := make([]byte, c.pageSize())
	for i := range page {
		page[i] = byte(i) ^ 0x5A
	}
	program(c, 1, 0, page)

	latchRead(c, 1, 0)
	if got := c.ReadData(); got != page[0] {
		t.Fatalf("column 0 = %#02x, want %#02x", got, page[0])
	}

	// Reposition the output column into the spare area.
	c.WriteCommand(cmdRandomOut)
	c.WriteAddress(64)
	c.WriteAddress(0)
	c.WriteCommand(cmdRandomOutConfirm)
	if got := c.ReadData(); got != page[64] {
		t.Fatalf("column 64 = %#02x, want %#02x", got, page[64])
	}
}

func TestFaultInjection(t *testing.T) {
	c := New(testConfig())

	c.FlipBit(0, 0, 0, 7)
	if got := readBack(c, 0, 0, 1)[0]; got != 0x7F {
		t.Errorf("flipped cell = %#02x, want 0x7F", got)
	}

	c.MarkBad(3)
	if got := readBack(c, 3*4, 64, 1)[0]; got != 0x00 {
		t.Errorf("bad-block marker = %#02x, want 0x00", got)
	}

	if !c.Ready() {
		t.Error("fresh chip reports busy")
	}
	c.StickBusy(true)
	if c.Ready() {
		t.Error("stuck-busy chip reports ready")
	}
	c.StickBusy(false)
	if !c.Ready() {
		t.Error("released chip reports busy")
	}
}

func TestStatsAndReset(t *testing.T) {
	c := New(testConfig())

	program(c, 0, 0, []byte{0x00})
	readBack(c, 0, 0, 1)
	erase(c, 0)
	c.WriteCommand(cmdReset)

	want := Stats{Reads: 1, Programs: 1, Erases: 1, Resets: 1}
	if got := c.Stats(); got != want {
		t.Fatalf("Stats = %+v, want %+v", got, want)
	}
}

func TestImagePersistence(t *testing.T) {
	fs := afero.NewMemMapFs()

	c := New(testConfig())
	program(c, 6, 0, []byte{0xDE, 0xAD, 0xBE, 0xEF})
	if err := c.SaveImage(fs, "nand.img"); err != nil {
		t.Fatalf("SaveImage: %v", err)
	}

	restored := New(testConfig())
	if err := restored.LoadImage(fs, "nand.img"); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if got := readBack(restored, 6, 0, 4); !bytes.Equal(got, []byte{0xDE, 0xAD, 0xBE, 0xEF}) {
		t.Fatalf("restored cells = %x", got)
	}

	// A geometry mismatch must refuse the image.
	small := testConfig()
	small.Blocks = 4
	if err := New(small).LoadImage(fs, "nand.img"); err == nil {
		t.Fatal("LoadImage accepted a mismatched image")
	}
}

func TestOffloadChannels(t *testing.T) {
	c := New(testConfig())
	page := make([]byte, c.pageSize())
	for i := range page {
		page[i] = byte(i + 1)
	}
	program(c, 2, 0, page)

	latchRead(c, 2, 0)
	rd := c.ReadChannel()
	buf := make([]byte, 8)
	if err := rd.Configure(buf, hal.GranularityByte); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	rd.ClearComplete()
	rd.Enable()
	if !rd.Complete() {
		t.Error("read transfer did not complete")
	}
	if rd.Enabled() {
		t.Error("completed channel still enabled")
	}
	if !bytes.Equal(buf, page[:8]) {
		t.Errorf("channel read = %x, want %x", buf, page[:8])
	}

	// Write direction: data cycles flow through the program path.
	c.WriteCommand(cmdProgramSetup)
	c.WriteAddress(0)
	c.WriteAddress(0)
	c.WriteAddress(12)
	c.WriteAddress(0)
	wr := c.WriteChannel()
	if err := wr.Configure([]byte{0xF0, 0x0F}, hal.GranularityByte); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	wr.ClearComplete()
	wr.Enable()
	c.WriteCommand(cmdProgramConfirm)
	if !wr.Complete() {
		t.Error("write transfer did not complete")
	}
	if got := readBack(c, 12, 0, 2); !bytes.Equal(got, []byte{0xF0, 0x0F}) {
		t.Errorf("channel write = %x, want f00f", got)
	}
}
