package main

import (
	"log"

	"github.com/todatrack/todatrack/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
