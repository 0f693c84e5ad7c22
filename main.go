package main

import "github.com/vibast-solutions/ms-go-paynl/cmd"

func main() {
	cmd.Execute()
}
