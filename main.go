package main

import "github.com/andresmejia3/facepipe/cmd"

func main() {
	cmd.Execute()
}
