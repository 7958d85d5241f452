package main

import (
	"gpu-stock-alerts/internal/cli"
)

func main() {
	cli.Execute()
}
