package board

import (
	"runtime/interrupt"
	"unsafe"

	"gpsdo/internal/discipline"
)

/*
The original firmware had a dedicated EEPROM cell for the trim word and
relied on its erased state reading as 0xFFFF (4.G, "uninitialized storage
reads as 0xFFFF"). The RP2040 has no EEPROM; the closest equivalent with the
same erased-state semantics is its own QSPI NOR flash, which also reads
erased bytes as 0xFF. One 4KB sector at the top of flash, below the
bootloader's own reserved region, is reserved for this single word.

Programming NOR flash requires erasing a full sector (setting it to all
0xFF) before any word in it can be reprogrammed, and the erase/program
commands must run with code execution paused out of the same flash (the
RP2040 XIPs its program text directly from this chip). The boot ROM
exposes flash_range_erase and flash_range_program for exactly this reason;
they already handle pausing XIP and are looked up by their boot ROM
function codes rather than linked in directly.
*/

const (
	flashBase      = 0x10000000
	flashSize      = 2 * 1024 * 1024
	trimSectorSize = 4096
	trimSectorOff  = flashSize - trimSectorSize
	trimWordOff    = 0 // first word of the reserved sector
)

type romFlashErase func(offset, size uint32)
type romFlashProgram func(offset uint32, data unsafe.Pointer, size uint32)

var (
	romEraseFn   romFlashErase
	romProgramFn romFlashProgram
)

// InitNVM resolves the boot ROM flash helper functions. Must run before any
// call to WriteTrim.
func InitNVM() {
	romEraseFn = lookupFlashErase()
	romProgramFn = lookupFlashProgram()
}

// ReadTrim reads the persisted trim word directly out of the memory-mapped
// flash (XIP requires no special sequencing for reads). An erased sector
// reads back as 0xFFFF, mapped to the mid-scale default the same way the
// original interpreted an unprogrammed EEPROM cell (4.G).
func ReadTrim() discipline.DACWord {
	addr := uintptr(flashBase + trimSectorOff + trimWordOff*2)
	raw := *(*uint16)(unsafe.Pointer(addr))
	return discipline.DACWordFromNV(raw)
}

// WriteTrim erases the reserved sector and programs the new word into it.
// This is a whole-sector erase for a single persisted word; EE_UPDATE_OFFSET
// (4.G) keeps this rare enough that flash wear is not a practical concern
// for an instrument that is on most of the time.
//
// Interrupts are disabled for the duration: nothing may execute out of
// flash, including an interrupt handler, while the boot ROM routines are
// mid-erase or mid-program.
func WriteTrim(word discipline.DACWord) {
	buf := [2]byte{byte(word), byte(word >> 8)}
	state := interrupt.Disable()
	romEraseFn(trimSectorOff, trimSectorSize)
	romProgramFn(trimSectorOff+trimWordOff*2, unsafe.Pointer(&buf[0]), uint32(len(buf)))
	interrupt.Restore(state)
}
