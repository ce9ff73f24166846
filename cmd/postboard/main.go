// Command postboard is the terminal client for the Postboard API.
package main

import (
	"flag"
	"fmt"
	"os"

	"postboard/internal/client"
)

func main() {
	defaultURL := os.Getenv("POSTBOARD_API_URL")
	if defaultURL == "" {
		defaultURL = client.DefaultBaseURL
	}
	apiURL := flag.String("api", defaultURL, "API base URL including /api (env POSTBOARD_API_URL)")
	timeout := flag.Duration("timeout", 0, "Per-request timeout (0 = none)")
	flag.Parse()

	api := client.NewAPI(*apiURL, *timeout)
	term := client.NewTerminal(os.Stdin, os.Stdout)
	fmt.Fprintf(os.Stdout, "postboard - %s (type help)\n", api.BaseURL())

	if err := term.Run(client.NewApp(api, term.Confirm)); err != nil {
		fmt.Fprintf(os.Stderr, "postboard: %v\n", err)
		os.Exit(1)
	}
}
