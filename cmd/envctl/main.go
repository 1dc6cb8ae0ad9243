package main

import "github.com/mathtutor/envctl/cmd/envctl/cmd"

func main() {
	cmd.Execute()
}
