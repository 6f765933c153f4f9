package nand_test

import (
	"fmt"

	"github.com/ardnew/softnand/nand"
	"github.com/ardnew/softnand/nand/hal/sim"
)

// Example programs a page on the simulated chip, injects a single-bit
// error, and reads the page back through ECC correction.
func Example() {
	chip := sim.New(sim.DefaultConfig())
	drv := nand.New(chip, nand.Config{})
	if err := drv.Open(); err != nil {
		fmt.Println("open:", err)
		return
	}

	spec := drv.Spec()
	data := make([]byte, spec.DataSize)
	for i := range data {
		data[i] = byte(i)
	}
	if err := drv.WritePage(0, 0, data, nil); err != nil {
		fmt.Println("write:", err)
		return
	}

	chip.FlipBit(0, 0, 1000, 4)

	back := make([]byte, spec.DataSize)
	if err := drv.ReadPage(0, 0, back, nil); err != nil {
		fmt.Println("read:", err)
		return
	}
	fmt.Println("corrected:", back[1000] == data[1000])
	// Output: corrected: true
}
