//go:build rp2040

package board

import (
	"device/rp"
	"machine"
	"unsafe"

	"gpsdo/internal/discipline"
	"gpsdo/internal/nmea"
)

/*
GPS frames arrive over UART0 at 9600 8N1 (6, GPS input). Rather than an
RXC-per-byte interrupt like the original AVR's USART0, RX is moved into a
small ring buffer by a dedicated DMA channel wired to the UART0_RX DREQ —
the same gather-into-ring technique the frequency-counter capture chain
uses for its own memory targets, just with write-increment and wraparound
instead of a fixed destination. A GPIO-free byte-at-a-time poll of the ring
in the foreground loop reassembles '\n'-terminated lines and hands complete
ones to the nmea package.
*/

const rxRingSizeBits = 6 // 64 bytes, matching the original's TX_BUF_LEN scale

var (
	rxRing   [1 << rxRingSizeBits]byte
	rxDMA    DmaChannel
	rxLine   [96]byte
	rxLineAt int
)

// fixUpdates carries the fix state of every valid $GPGSA out to the
// foreground, changed or not; Core.OnFixChange filters out repeats. It is
// sized at 1: only the most recent fix state matters, never a backlog of
// readings.
var fixUpdates = make(chan discipline.GpsStatus, 1)

// FixUpdates returns the channel the foreground reads GPS fix changes from.
func FixUpdates() <-chan discipline.GpsStatus {
	return fixUpdates
}

// InitSerial configures UART0 for the GPS link and arms a DMA channel to
// continuously gather received bytes into rxRing.
func InitSerial() error {
	if err := machine.UART0.Configure(machine.UARTConfig{BaudRate: 9600}); err != nil {
		return err
	}

	ch, ok := ClaimChannel()
	if !ok {
		return errDMAUnavailable
	}
	rxDMA = ch

	cc := DefaultDMAConfig(ch.ChannelIndex())
	cc.SetReadIncrement(false)
	cc.SetWriteIncrement(true)
	cc.SetRing(true, rxRingSizeBits)
	cc.SetTransferDataSize(DmaTxSize8)
	cc.SetTREQ_SEL(_DREQ_UART0_RX)
	cc.SetChainTo(ch.ChannelIndex())
	cc.SetEnable(true)

	ch.HW().READ_ADDR.Set(uart0DataRegAddr())
	ch.HW().WRITE_ADDR.Set(ringBaseAddr())
	ch.HW().TRANS_COUNT.Set(0xFFFFFFFF) // free-running; ring wrap never ends the transfer
	ch.Init(cc)

	return nil
}

// PollSerial should be called once per foreground loop iteration. It drains
// whatever new bytes the DMA ring has gathered since the last call,
// reassembles '\n'-terminated lines, and dispatches completed ones to the
// GSA parser, publishing the fix status of every valid $GPGSA sentence.
func PollSerial() {
	for _, b := range drainRing() {
		if b == '\n' || b == '\r' {
			if rxLineAt == 0 {
				continue
			}
			handleLine(string(rxLine[:rxLineAt]))
			rxLineAt = 0
			continue
		}
		if rxLineAt < len(rxLine) {
			rxLine[rxLineAt] = b
			rxLineAt++
		} else {
			rxLineAt = 0 // overlong line; drop and resync on the next terminator
		}
	}
}

var lastDrainPos uint32

// drainRing returns the bytes the DMA has written into rxRing since the
// previous call, by comparing how far WRITE_ADDR's low ring-sized bits have
// advanced. The ring never stops; only the read position this function
// tracks determines what counts as "new".
func drainRing() []byte {
	wrote := rxDMA.HW().WRITE_ADDR.Get() & (1<<rxRingSizeBits - 1)
	pos := lastDrainPos
	if wrote == pos {
		return nil
	}
	var out []byte
	for p := pos; p != wrote; p = (p + 1) & (1<<rxRingSizeBits - 1) {
		out = append(out, rxRing[p])
	}
	lastDrainPos = wrote
	return out
}

func uart0DataRegAddr() uint32 {
	return uint32(uintptr(unsafe.Pointer(&rp.UART0.UARTDR)))
}

func ringBaseAddr() uint32 {
	return uint32(uintptr(unsafe.Pointer(&rxRing[0])))
}

func handleLine(line string) {
	g, ok := nmea.ParseGSA(line)
	if !ok {
		return
	}
	status := discipline.Unlocked
	if g.FixMode.Locked3D() {
		status = discipline.Locked3D
	}
	select {
	case fixUpdates <- status:
	default:
		// a fix update is already pending for the foreground; drop it
		// and publish this line's status in its place.
		<-fixUpdates
		fixUpdates <- status
	}
}

var errDMAUnavailable = dmaUnavailableError{}

type dmaUnavailableError struct{}

func (dmaUnavailableError) Error() string { return "board: no DMA channel available for UART0 RX" }
