// cmd/server/main.go
package main

import "github.com/bangazon/bangazon-backend/cmd/server/commands"

func main() {
	commands.Execute()
}
