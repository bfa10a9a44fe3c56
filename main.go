package main

import "github.com/andthum/hpc-submit-scripts-sub001/cmd"

func main() {
	cmd.Execute()
}
