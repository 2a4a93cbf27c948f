//go:build !tinygo && !cgo

package sim

import "errors"

func RunWindow(_ string, _ *Board, _ Cycler, _ int) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
