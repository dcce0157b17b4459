//go:build windows

package services

import "errors"

func mkfifo(string) error {
	return errors.New("fifo not available")
}
