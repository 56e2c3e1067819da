package main

import "github.com/mouse-blink/covlink/cmd"

func main() {
	cmd.Execute()
}
