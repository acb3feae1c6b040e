//go:build tools
// +build tools

// Package chatrelay declares tool dependencies for this module.
//
// These imports are not used at runtime. They keep Go-based tools invoked
// through `go generate` (mockgen) tracked in go.mod.
package chatrelay

import (
	_ "go.uber.org/mock/mockgen"
)
