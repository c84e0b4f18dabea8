// Command client calls the example user service, logging every
// request as a curl command.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/starius/restcall"
	"github.com/starius/restcall/debugclient"
	"github.com/starius/restcall/example"
)

var (
	baseURL = flag.String("base-url", "http://127.0.0.1:8080", "Base URL of the user service")
	debug   = flag.Bool("debug", false, "Dump requests and responses")
	userID  = flag.Int64("user", 1, "ID of the user to fetch")
)

func main() {
	flag.Parse()

	opts := []restcall.Option{}
	if *debug {
		opts = append(opts, restcall.CustomClient(debugclient.New(http.DefaultClient, os.Stderr)))
	}
	backend := restcall.NewHTTPBackend(*baseURL, opts...)
	defer backend.Close()

	api, err := restcall.New[example.UserAPI](backend)
	if err != nil {
		log.Fatalf("failed to bind UserAPI: %v", err)
	}

	user, err := api.GetUser(context.Background(), *userID)
	if err != nil {
		log.Fatalf("GetUser(%d) failed: %v", *userID, err)
	}
	fmt.Printf("user %d: %s <%s>\n", user.ID, user.Name, user.Email)
}
