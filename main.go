package main

import (
	"log"

	"github.com/picstash/picstash/cmd"
	"github.com/picstash/picstash/config"
)

func main() {
	log.Printf("picstash %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
