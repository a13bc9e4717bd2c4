package main

import (
	"os"

	"starspread/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
