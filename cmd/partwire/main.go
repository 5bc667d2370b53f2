// Command partwire encodes YAML documents in the partwire format, whole or
// partially, and keeps framed results in a bbolt store.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
)

const version = "0.1.0"

func main() {
	log.SetFlags(0)
	log.SetPrefix("partwire: ")
	// a missing .env is fine
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatal(err)
	}
}

func run(command string, args []string, stdin io.Reader, stdout io.Writer) error {
	switch command {
	case "encode":
		return encodeCommand(args, stdin, stdout)
	case "header":
		return headerCommand(args, stdout)
	case "get":
		return getCommand(args, stdout)
	case "profile":
		return profileCommand(args, stdin)
	case "version":
		fmt.Fprintf(stdout, "partwire %s\n", version)
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nCommands:\n")
	fmt.Fprintf(os.Stderr, "  encode   Encode a YAML document, whole or by selectors\n")
	fmt.Fprintf(os.Stderr, "  header   Show the header encoding of numbers\n")
	fmt.Fprintf(os.Stderr, "  get      Show a stored frame\n")
	fmt.Fprintf(os.Stderr, "  profile  Write a heap profile of repeated encoding\n")
	fmt.Fprintf(os.Stderr, "  version  Show version information\n")
	fmt.Fprintf(os.Stderr, "\nRun '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
