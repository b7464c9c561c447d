package main

import "github.com/theirongolddev/japa/cmd"

func main() {
	cmd.Execute()
}
