package main

import "taskhub.com/taskhub/cmd"

func main() {
	cmd.Execute()
}
