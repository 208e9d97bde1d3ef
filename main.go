package main

import (
	"geohash-service/cmd"
)

var Version = "development"

func main() {
	cmd.Version = Version
	cmd.Execute()
}
