package main

import "github.com/tayloree/bonuscli/cmd"

func main() {
	cmd.Execute()
}
