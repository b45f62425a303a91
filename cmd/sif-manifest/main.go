package main

import "github.com/RedSkip08/SwedishinFrames/internal/cli"

func main() {
	cli.Execute()
}
