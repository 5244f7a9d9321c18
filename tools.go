//go:build tools
// +build tools

// Package tools declares tool dependencies for this module.
//
// These imports are not used at runtime. They keep mockgen, invoked via
// `go generate` on contract/contract.go, pinned in go.mod / go.sum so a
// fresh checkout can regenerate mocks/ without extra setup.
package chat_client

import (
	_ "go.uber.org/mock/mockgen"
)
