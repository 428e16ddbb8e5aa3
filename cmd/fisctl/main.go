package main

import "github.com/typeofTommy/fis-inscriptions-web-sub000/cmd/fisctl/commands"

func main() {
	commands.Execute()
}
