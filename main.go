package main

import "elmpid/cmd"

func main() {
	cmd.Execute()
}
