package cmd

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/studyhall/studyhall/internal/devserver"
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a local in-memory backend for development",
	Long:  "Serves the Studyhall API from memory with fixture content. Point the client at it with --server.",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		fmt.Println("Dev server listening on", addr)
		return http.ListenAndServe(addr, middleware.Logger(devserver.New().Handler()))
	},
}

func init() {
	devserverCmd.Flags().String("addr", ":8787", "Listen address")
}
