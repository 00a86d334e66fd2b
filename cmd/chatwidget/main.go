// Command chatwidget is a terminal client for a POST /chat backend.
package main

import "github.com/diogo/chatwidget/internal/commands"

func main() {
	commands.Execute()
}
