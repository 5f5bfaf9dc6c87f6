package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/corvusHold/relay/internal/config"
	"github.com/corvusHold/relay/internal/platform/validation"
	"github.com/corvusHold/relay/internal/version"
)

const (
	exitOK     = 0
	exitUsage  = 2
	exitConfig = 3
)

var (
	osExit           = os.Exit
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func handleCLICommand(args []string) bool {
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "check-config":
		osExit(runCheckConfig())
		return true
	case "version", "--version":
		fmt.Fprintln(stdout, version.String())
		osExit(exitOK)
		return true
	case "help", "-h", "--help":
		printHelp()
		osExit(exitOK)
		return true
	default:
		if strings.HasPrefix(args[0], "-") {
			fmt.Fprintf(stderr, "unknown flag: %s\n", args[0])
			osExit(exitUsage)
			return true
		}
		return false
	}
}

// runCheckConfig loads and validates the environment without starting the server.
func runCheckConfig() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config error: %v\n", err)
		return exitConfig
	}
	if err := validation.Struct(cfg); err != nil {
		fmt.Fprintln(stderr, "config error:")
		for _, l := range validation.ErrorResponse(err).Lines() {
			fmt.Fprintf(stderr, "  %s\n", l)
		}
		return exitConfig
	}
	fmt.Fprintln(stdout, cfg.String())
	fmt.Fprintf(stdout, "email: %s\n", readiness(cfg.EmailReady()))
	fmt.Fprintf(stdout, "sms:   %s (templates: %s)\n", readiness(cfg.SMSReady()), strings.Join(cfg.SMSTemplateIDs(), ","))
	return exitOK
}

func readiness(ok bool) string {
	if ok {
		return "ready"
	}
	return "not configured"
}

func printHelp() {
	fmt.Fprintln(stdout, "Mailjet relay")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintln(stdout, "  relay                 Start API server")
	fmt.Fprintln(stdout, "  relay check-config    Validate environment configuration and exit")
	fmt.Fprintln(stdout, "  relay version         Print version")
}
