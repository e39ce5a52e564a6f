// cmd/uiverify/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/valpere/uiverify/internal/verify"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
)

// main runs one verification pass. The pass itself takes no flags; its
// parameters are fixed. A fault anywhere inside the pass is reported on
// stdout and the process still exits 0; only a failure to start the browser
// aborts.
func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version":
			printVersion()
			return
		case "help", "--help", "-h":
			printUsage()
			return
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n", os.Args[1])
			printUsage()
			os.Exit(1)
		}
	}

	runner := verify.NewRunner()
	if err := runner.Run(context.Background()); err != nil {
		// The browser never came up, so there is nothing to capture.
		log.Fatalf("uiverify: %v", err)
	}
}

// printUsage displays help information.
func printUsage() {
	fmt.Println("uiverify - headless verification of the local analysis board UI")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  uiverify            Run one verification pass against http://localhost:1420")
	fmt.Println("  uiverify version    Show version information")
	fmt.Println("  uiverify help       Show this help message")
	fmt.Println()
	fmt.Println("Artifacts (overwritten on each run):")
	fmt.Println("  debug_screenshot.png         Written on every pass that reaches the page")
	fmt.Println("  pv_board_verification.png    Written only when 'Stockfish 16' is rendered")
}

// printVersion displays version information.
func printVersion() {
	fmt.Printf("uiverify %s\n", version)
	fmt.Printf("Build time: %s\n", buildTime)
}
