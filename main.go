package main

import (
	"os"

	"github.com/rjoseph-dev/crewsched/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
