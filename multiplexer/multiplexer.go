package multiplexer

import (
	"fmt"

	"tinygo.org/x/drivers"
)

const DefaultAddress = 0x70

// TCA9548A multiplexer
type Multiplexer struct {
	i2c     drivers.I2C
	addr    uint16
	Channel uint8
	valid   bool
}

func NewMultiplexer(i2c drivers.I2C, addr uint16) *Multiplexer {
	return &Multiplexer{
		i2c:  i2c,
		addr: addr,
	}
}

func (m *Multiplexer) Select(channel uint8) error {
	if channel > 7 {
		return fmt.Errorf("multiplexer: channel %d out of range", channel)
	}
	if m.valid && m.Channel == channel {
		return nil
	}
	data := []byte{1 << channel}
	if err := m.i2c.Tx(m.addr, data, nil); err != nil {
		m.valid = false
		return err
	}
	m.Channel = channel
	m.valid = true
	return nil
}

// Bus returns a drivers.I2C for devices behind one channel.
func (m *Multiplexer) Bus(channel uint8) drivers.I2C {
	return &channelBus{mux: m, channel: channel}
}

type channelBus struct {
	mux     *Multiplexer
	channel uint8
}

func (b *channelBus) Tx(addr uint16, w, r []byte) error {
	if err := b.mux.Select(b.channel); err != nil {
		return err
	}
	return b.mux.i2c.Tx(addr, w, r)
}
