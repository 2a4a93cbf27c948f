package rotary

import (
	"encoding/binary"
	"time"

	"tinygo.org/x/drivers"
)

// Adafruit seesaw register map, the subset the rotary breakout uses.
const (
	moduleStatus  = 0x00
	moduleGPIO    = 0x01
	moduleEncoder = 0x11

	statusVersion = 0x02
	statusSwrst   = 0x7F

	gpioDirClrBulk = 0x03
	gpioBulk       = 0x04
	gpioBulkSet    = 0x05
	gpioIntEnSet   = 0x08
	gpioPullEnSet  = 0x0B

	encoderIntEnSet = 0x10
	encoderPosition = 0x30
)

const (
	DefaultAddress   = 0x36
	DefaultSwitchPin = 24
	ProductRotary    = 4991

	DefaultReadDelay = 250 * time.Microsecond
)

// Encoder talks to a seesaw rotary encoder breakout.
type Encoder struct {
	i2c       drivers.I2C
	address   uint16
	switchPin uint8
	invert    bool
	delay     time.Duration
}

// NewEncoder returns an encoder on the given bus. Reads wait delay between the
// register select and the data phase; the seesaw needs a few hundred microseconds.
func NewEncoder(i2c drivers.I2C, address uint16, switchPin uint8, invert bool, delay time.Duration) *Encoder {
	return &Encoder{
		i2c:       i2c,
		address:   address,
		switchPin: switchPin,
		invert:    invert,
		delay:     delay,
	}
}

func (e *Encoder) read(module, function byte, buf []byte) error {
	if err := e.i2c.Tx(e.address, []byte{module, function}, nil); err != nil {
		return err
	}
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	return e.i2c.Tx(e.address, nil, buf)
}

func (e *Encoder) write(module, function byte, data ...byte) error {
	buf := make([]byte, 0, 2+len(data))
	buf = append(buf, module, function)
	buf = append(buf, data...)
	return e.i2c.Tx(e.address, buf, nil)
}

func (e *Encoder) writeMask(module, function byte, mask uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], mask)
	return e.write(module, function, b[:]...)
}

// Version reads the firmware version word; the product id is in the upper half.
func (e *Encoder) Version() (uint32, error) {
	buf := make([]byte, 4)
	if err := e.read(moduleStatus, statusVersion, buf); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf), nil
}

func (e *Encoder) ProductID() (uint16, error) {
	v, err := e.Version()
	if err != nil {
		return 0, err
	}
	return uint16(v >> 16), nil
}

// SoftReset restarts the seesaw chip.
func (e *Encoder) SoftReset() error {
	return e.write(moduleStatus, statusSwrst, 0xFF)
}

// GetCount reads the absolute encoder position.
func (e *Encoder) GetCount() (int32, error) {
	buf := make([]byte, 4)
	if err := e.read(moduleEncoder, encoderPosition, buf); err != nil {
		return 0, err
	}
	count := int32(binary.BigEndian.Uint32(buf))
	if e.invert {
		count = -count
	}
	return count, nil
}

// ConfigureSwitch makes the push switch pin an input with pull-up.
func (e *Encoder) ConfigureSwitch() error {
	mask := uint32(1) << e.switchPin
	if err := e.writeMask(moduleGPIO, gpioDirClrBulk, mask); err != nil {
		return err
	}
	if err := e.writeMask(moduleGPIO, gpioPullEnSet, mask); err != nil {
		return err
	}
	return e.writeMask(moduleGPIO, gpioBulkSet, mask)
}

// Pressed reads the push switch. The switch pulls the pin low.
func (e *Encoder) Pressed() (bool, error) {
	buf := make([]byte, 4)
	if err := e.read(moduleGPIO, gpioBulk, buf); err != nil {
		return false, err
	}
	level := binary.BigEndian.Uint32(buf) & (uint32(1) << e.switchPin)
	return level == 0, nil
}

// EnableInterrupts turns on the switch and encoder interrupt outputs.
// The loop polls; nothing consumes the interrupt line.
func (e *Encoder) EnableInterrupts() error {
	if err := e.writeMask(moduleGPIO, gpioIntEnSet, uint32(1)<<e.switchPin); err != nil {
		return err
	}
	return e.write(moduleEncoder, encoderIntEnSet, 0x01)
}
