// Package main is the production entry point for the qTunes music player.
//
// Build:
//
//	go build -o build/qtunes ./cmd
//
// Run:
//
//	./build/qtunes [-config file] [-folder dir]
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tejashwikalptaru/qtunes/internal/app"
)

func main() {
	var (
		configPath  = flag.String("config", "", "read settings from this file only")
		folder      = flag.String("folder", "", "music folder to scan when no library is cached")
		showVersion = flag.Bool("version", false, "print the version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(app.GetVersionInfo().FullString())
		return
	}
	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %v\n", flag.Args())
		flag.Usage()
		os.Exit(2)
	}

	// Create the application with dependency injection
	application, err := app.NewApplication(app.Options{
		ConfigPath: *configPath,
		Folder:     *folder,
	})
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Ensure a graceful shutdown
	defer application.Shutdown()

	// Run application (blocks until the window is closed)
	application.Run()
}
