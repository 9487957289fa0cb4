//go:build !darwin
// +build !darwin

package main

import "errors"

func inspectMetal(_ string) error {
	return errors.New("go-metal is only available on macOS")
}
