//go:build windows

package elevate

import (
	"golang.org/x/sys/windows"
)

type tokenProber struct{}

// NewProber returns a prober reading the elevation flag of the process token
func NewProber() Prober {
	return tokenProber{}
}

func (tokenProber) IsAdmin() (bool, error) {
	return windows.GetCurrentProcessToken().IsElevated(), nil
}
