package main

import "github.com/tauria/tauria-tsgen/cmd"

func main() {
	cmd.Execute()
}
