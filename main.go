package main

import (
	"github.com/starkedge/mempool/command/root"
)

func main() {
	root.NewRootCommand().Execute()
}
