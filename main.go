/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/gmaffy/spades-runner/cmd"

func main() {
	cmd.Execute()
}
