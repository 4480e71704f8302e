package main

import (
	"log"

	"cleanview/cmd/cleanview/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		log.Fatal(err)
	}
}
