package main

import (
	"github.com/robotalks/cfa533.go/pkg/cli/sh"

	_ "github.com/robotalks/cfa533.go/pkg/cli/cmds/lcd"
)

//go-build: CGO_ENABLED=0

func main() {
	sh.Main()
}
