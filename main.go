// Package main is the entry point for the QueryDesk CLI application.
// It provides database administration capabilities for PostgreSQL and MySQL.
package main

import (
	"querydesk/cli/cmd"
)

// main is the entry point for the QueryDesk CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
