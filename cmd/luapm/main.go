package main

import "luapm/internal/cli"

func main() {
	cli.Execute()
}
