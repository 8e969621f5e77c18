package main

import (
	"github.com/themeradar/anchor/pkg/cli"
)

func main() {
	cli.Execute()
}
