package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/heysubinoy/kvrest/internal/api"
	"github.com/heysubinoy/kvrest/pkg/kv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Get server address from environment or use default
	addr := os.Getenv("KV_GRPC_ADDR")
	if addr == "" {
		addr = "127.0.0.1:9090"
	}
	// If the address starts with ":", it's missing a host - use localhost
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	// Connect to gRPC server using passthrough resolver for direct address connection
	conn, err := grpc.NewClient("passthrough:///"+addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	client := api.NewGRPCClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "read":
		requireArgs(command, args, 1, "<key>")
		value, err := client.Read(ctx, args[0])
		check(err)
		os.Stdout.Write(value)
		fmt.Println()

	case "insert":
		requireArgs(command, args, 2, "<key> <value>")
		check(client.Insert(ctx, args[0], []byte(args[1])))
		fmt.Printf("Inserted '%s'\n", args[0])

	case "has":
		requireArgs(command, args, 1, "<key>")
		ok, err := client.Has(ctx, args[0])
		check(err)
		fmt.Println(ok)

	case "keys":
		keys, err := client.Keys(ctx)
		check(err)
		for _, key := range keys {
			fmt.Println(key)
		}

	case "delete":
		requireArgs(command, args, 1, "<key>")
		check(client.Delete(ctx, args[0]))
		fmt.Printf("Deleted '%s'\n", args[0])

	case "clear":
		check(client.Clear(ctx))
		fmt.Println("Cleared")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func requireArgs(command string, args []string, n int, usage string) {
	if len(args) < n {
		fmt.Printf("Usage: kv-cli %s %s\n", command, usage)
		os.Exit(1)
	}
}

// check exits with the failure reason of err, if any.
func check(err error) {
	if err == nil {
		return
	}
	rerr := kv.AsReadError(err)
	if rerr.Reason == kv.ReasonNotFound {
		fmt.Printf("Key '%s' not found\n", rerr.Key)
		os.Exit(1)
	}
	log.Fatalf("Request failed: %v", rerr)
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  kv-cli read <key>")
	fmt.Println("  kv-cli insert <key> <value>")
	fmt.Println("  kv-cli has <key>")
	fmt.Println("  kv-cli keys")
	fmt.Println("  kv-cli delete <key>")
	fmt.Println("  kv-cli clear")
	fmt.Println("")
	fmt.Println("Environment variables:")
	fmt.Println("  KV_GRPC_ADDR - kvrest gRPC address (default: 127.0.0.1:9090)")
}
