// Package main provides openclaw-atlas, a command that sends one prompt to
// the Atlas chat page in a signed-in browser and prints the reply.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yaoshengwang/openclaw/pkg/llm/openai"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	Prompt       string
	Timeout      time.Duration
	URL          string
	Profile      string
	ConfigFile   string
	ProfilesFile string
	Sandboxed    bool
	Fallback     bool
	Model        string
	BaseURL      string
	APIKey       string
	Copy         bool
	Highlight    bool
	ToolCall     bool
	ShowVersion  bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("openclaw-atlas v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		cancel()
	}()

	if err := run(ctx, config); err != nil {
		cancel()
		log.Printf("openclaw-atlas: %v", err)
		os.Exit(1)
	}
	cancel()
}

func parseFlags() *CLIConfig {
	config := &CLIConfig{}

	flag.StringVar(&config.Prompt, "prompt", "", "Prompt to send (reads stdin when empty)")
	flag.DurationVar(&config.Timeout, "timeout", 2*time.Minute, "Overall time budget for the reply")
	flag.StringVar(&config.URL, "url", "", "Chat page to open instead of the configured one")
	flag.StringVar(&config.Profile, "profile", "", "Browser profile (default profile when empty)")
	flag.StringVar(&config.ConfigFile, "config", "", "Path to config file (default ~/.openclaw/config.json)")
	flag.StringVar(&config.ProfilesFile, "profiles", "", "YAML file of browser profiles to import before running")
	flag.BoolVar(&config.Sandboxed, "sandboxed", false, "Refuse to drive the browser")
	flag.BoolVar(&config.Fallback, "fallback", false, "Answer through the LLM API when Atlas is unavailable")
	flag.StringVar(&config.Model, "model", "", "Fallback model")
	flag.StringVar(&config.BaseURL, "base-url", "", "Fallback API base URL")
	flag.StringVar(&config.APIKey, "api-key", "", "Fallback API key")
	flag.BoolVar(&config.Copy, "copy", false, "Copy the reply to the clipboard")
	flag.BoolVar(&config.Highlight, "highlight", false, "Render the reply as highlighted markdown")
	flag.BoolVar(&config.ToolCall, "tool-call", false, "Read an XML tool call from stdin and run it")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "openclaw-atlas - send a prompt through the Atlas browser\n\n")
		fmt.Fprintf(os.Stderr, "Usage: openclaw-atlas [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  openclaw-atlas -prompt \"Summarize RFC 9110 in three bullets\"\n\n")
		fmt.Fprintf(os.Stderr, "  echo \"What changed in Go 1.24?\" | openclaw-atlas -fallback -highlight\n\n")
		fmt.Fprintf(os.Stderr, "  openclaw-atlas -tool-call < call.xml\n\n")
	}

	flag.Parse()
	if config.Model == "" {
		config.Model = openai.DefaultModel
	}
	return config
}
