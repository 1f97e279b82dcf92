package main

import "github.com/baohaus/expeditor/cmd"

func main() {
	cmd.Execute()
}
