package main

import "github.com/KaramelBytes/tabsight/cmd"

func main() {
	cmd.Execute()
}
