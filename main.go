package main

import "github.com/payflowhq/payflow/cmd"

func main() {
	cmd.Execute()
}
