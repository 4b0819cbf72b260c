package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/vanijya/app/controllers"
	"github.com/shashiranjanraj/vanijya/app/routes"
	"github.com/shashiranjanraj/vanijya/internal/server"
	"github.com/shashiranjanraj/vanijya/pkg/collection"
	"github.com/shashiranjanraj/vanijya/pkg/router"
)

// vanijya run — start the HTTP server.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the HTTP server (alias: serve)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

var serveCmd = &cobra.Command{
	Use:    "serve",
	Short:  "Start the HTTP server",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// vanijya route:list — print all registered routes. Handlers are never
// invoked, so the controllers can be wired without live services.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := router.New()
		routes.RegisterAPI(r, routes.Controllers{
			Auth:         controllers.NewAuthController(nil),
			Registration: controllers.NewRegistrationController(nil),
			Payment:      controllers.NewPaymentController(nil),
		})

		infos := collection.SortBy(r.Routes(), func(a, b router.RouteInfo) bool {
			if a.Path != b.Path {
				return a.Path < b.Path
			}
			return a.Method < b.Method
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
