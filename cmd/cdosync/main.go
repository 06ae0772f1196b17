package main

import (
	_ "time/tzdata" // processing.timezone works without system zoneinfo

	"github.com/dbsmedya/cdosync/cmd/cdosync/cmd"
)

func main() {
	cmd.Execute()
}
