// cmd/audit/main.go
package main

import "audit-service/internal/cli"

func main() {
	cli.Execute()
}
