package main

import (
	"github.com/kitsunet/livepaper/internal/cli"
)

func main() {
	cli.Execute()
}
