package main

import "github.com/turbolytics/hydrator/internal/cmd"

func main() {
	cmd.Execute()
}
