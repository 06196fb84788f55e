package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/yourorg/estatehub/internal/infrastructure/logger"
	"github.com/yourorg/estatehub/pkg/config"
	"github.com/yourorg/estatehub/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "migrate":
		err = runMigrate(args)
	case "listings":
		err = handleListings(args)
	case "users":
		err = handleUsers(args)
	case "bids":
		err = handleBids(args)
	case "health":
		err = checkHealth()
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runMigrate applies the embedded schema directly against the configured database
func runMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	timeout := fs.Duration("timeout", time.Minute, "overall timeout")
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := database.NewConnectionPool(ctx, cfg.Database.Pool(), log)
	if err != nil {
		return err
	}
	defer pool.Close()

	applied, err := database.Migrate(ctx, pool, database.Migrations())
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Println("✓ Schema already up to date")
		return nil
	}
	for _, v := range applied {
		fmt.Printf("✓ Applied %s\n", v)
	}
	return nil
}

func handleListings(args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: estatehub listings <list|get|status>")
		return nil
	}

	switch args[0] {
	case "list":
		var listings []map[string]interface{}
		if err := apiCall(http.MethodGet, "/listings", nil, &listings); err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tPRICE\tSTATUS")
		for _, l := range listings {
			fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", l["id"], l["title"], l["price"], l["status"])
		}
		return w.Flush()
	case "get":
		id, err := idArg(args[1:], "estatehub listings get <listing-id>")
		if err != nil {
			return err
		}
		return printJSON(http.MethodGet, "/listings/"+id, nil)
	case "status":
		fs := flag.NewFlagSet("status", flag.ExitOnError)
		status := fs.String("status", "", "new status (active, upcoming, sold, archived)")
		fs.Parse(args[1:])
		id, err := idArg(fs.Args(), "estatehub listings status -status sold <listing-id>")
		if err != nil {
			return err
		}
		return printJSON(http.MethodPatch, "/listings/"+id+"/status", map[string]string{"status": *status})
	default:
		return fmt.Errorf("unknown listings command: %s", args[0])
	}
}

func handleUsers(args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: estatehub users <list|favorites>")
		return nil
	}

	switch args[0] {
	case "list":
		var users []map[string]interface{}
		if err := apiCall(http.MethodGet, "/users", nil, &users); err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE")
		for _, u := range users {
			fmt.Fprintf(w, "%v\t%v\t%v %v\t%v\n", u["id"], u["email"], u["first_name"], u["last_name"], u["role_id"])
		}
		return w.Flush()
	case "favorites":
		id, err := idArg(args[1:], "estatehub users favorites <user-id>")
		if err != nil {
			return err
		}
		return printJSON(http.MethodGet, "/users/"+id+"/favorites", nil)
	default:
		return fmt.Errorf("unknown users command: %s", args[0])
	}
}

func handleBids(args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: estatehub bids <list|accept>")
		return nil
	}

	switch args[0] {
	case "list":
		id, err := idArg(args[1:], "estatehub bids list <listing-id>")
		if err != nil {
			return err
		}
		var bids []map[string]interface{}
		if err := apiCall(http.MethodGet, "/listings/"+id+"/bids", nil, &bids); err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tBIDDER\tAMOUNT\tACCEPTED\tCREATED")
		for _, b := range bids {
			fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n", b["id"], b["bidder_id"], b["amount"], b["is_accepted"], b["created_at"])
		}
		return w.Flush()
	case "accept":
		id, err := idArg(args[1:], "estatehub bids accept <bid-id>")
		if err != nil {
			return err
		}
		return printJSON(http.MethodPatch, "/bids/"+id+"/accept", nil)
	default:
		return fmt.Errorf("unknown bids command: %s", args[0])
	}
}

func checkHealth() error {
	return printJSON(http.MethodGet, "/readyz", nil)
}

// Helper functions
func apiCall(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, getAPIURL()+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
			Kind  string `json:"kind"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%s %s: %d %s (%s)", method, path, resp.StatusCode, apiErr.Error, apiErr.Kind)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func printJSON(method, path string, body interface{}) error {
	var result interface{}
	if err := apiCall(method, path, body, &result); err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func idArg(args []string, usage string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("usage: %s", usage)
	}
	if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
		return "", fmt.Errorf("invalid id %q", args[0])
	}
	return args[0], nil
}

func getAPIURL() string {
	if url := os.Getenv("ESTATEHUB_API"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

func printUsage() {
	fmt.Print(`EstateHub CLI

Usage:
  estatehub <command> [options]

Commands:
  migrate    Apply database migrations (uses DB_* environment variables)
  listings   Listing operations (list, get, status)
  users      User operations (list, favorites)
  bids       Bid operations (list, accept)
  health     Show server readiness
  help       Show this help message

Environment Variables:
  ESTATEHUB_API    API endpoint (default: http://localhost:8080)

Examples:
  estatehub migrate
  estatehub listings list
  estatehub listings status -status sold 42
  estatehub bids list 42
  estatehub bids accept 7
`)
}
