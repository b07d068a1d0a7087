// Command estateadmin は不動産掲載管理APIのサーバー・ワーカー・マイグレーションを起動する。
//
//	estateadmin [serve|worker|migrate|healthcheck]
package main

import (
	"fmt"
	"os"

	"github.com/Deepthi94961/estate-admin/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "estateadmin: %v\n", err)
		os.Exit(1)
	}
}
