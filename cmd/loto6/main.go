package main

import (
	"context"

	"loto6-backend/cmd/loto6/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
