package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/corvusHold/relay/internal/version"
)

var (
	cfgFile   string
	apiURL    string
	verbose   bool
	outputFmt string
)

// Config holds CLI configuration
type Config struct {
	APIURL string `mapstructure:"api_url"`
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "relay-cli",
	Short: "Mailjet relay CLI - send test emails and SMS through a relay",
	Long: `relay-cli talks to a running relay server.
Send template emails and SMS, and check server health from the terminal.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "API URL: %s\n", apiURL)
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.relay-cli.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "relay base URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "output format (table, json)")

	_ = viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))

	rootCmd.AddCommand(emailCmd)
	rootCmd.AddCommand(smsCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".relay-cli")
	}

	// Environment variables
	viper.SetEnvPrefix("RELAY")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}

	if apiURL == "" {
		apiURL = viper.GetString("api_url")
	}
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}
}

// Email
var (
	emailTo       []string
	emailVars     []string
	emailCampaign string
)

var emailCmd = &cobra.Command{
	Use:   "email <template-id>",
	Short: "Send a template email",
	Long:  "Send a Mailjet template email through the relay. Recipients are given as email or \"Name <email>\".",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vars, err := parseVars(emailVars)
		if err != nil {
			return err
		}
		req := EmailRequest{Variables: vars, CustomCampaign: emailCampaign}
		for _, to := range emailTo {
			req.To = append(req.To, parseRecipient(to))
		}
		return newClient(apiURL, cmd.OutOrStdout()).SendEmail(args[0], req)
	},
}

// SMS
var (
	smsTo   string
	smsVars []string
)

var smsCmd = &cobra.Command{
	Use:   "sms <template-id>",
	Short: "Send a template SMS",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vars, err := parseVars(smsVars)
		if err != nil {
			return err
		}
		return newClient(apiURL, cmd.OutOrStdout()).SendSMS(args[0], SMSRequest{To: smsTo, Variables: vars})
	},
}

func init() {
	emailCmd.Flags().StringArrayVar(&emailTo, "to", nil, "recipient (repeatable)")
	emailCmd.Flags().StringArrayVar(&emailVars, "var", nil, "template variable as key=value (repeatable)")
	emailCmd.Flags().StringVar(&emailCampaign, "campaign", "", "custom campaign name")

	smsCmd.Flags().StringVar(&smsTo, "to", "", "recipient phone number")
	smsCmd.Flags().StringArrayVar(&smsVars, "var", nil, "template variable as key=value (repeatable)")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check relay health",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient(apiURL, cmd.OutOrStdout()).CheckHealth()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

// Configuration commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Current Configuration:")
		fmt.Fprintf(out, "API URL: %s\n", apiURL)
		if viper.ConfigFileUsed() != "" {
			fmt.Fprintf(out, "Config file: %s\n", viper.ConfigFileUsed())
		}
		return nil
	},
}

var configSetURLCmd = &cobra.Command{
	Use:   "set-url <url>",
	Short: "Persist the relay base URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}
			path = filepath.Join(home, ".relay-cli.yaml")
		}
		viper.Set("api_url", args[0])
		if err := viper.WriteConfigAs(path); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetURLCmd)
}

// parseVars turns key=value pairs into a variables map; nil when empty.
func parseVars(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid variable %q, expected key=value", p)
		}
		vars[strings.TrimSpace(k)] = v
	}
	return vars, nil
}

// parseRecipient accepts "email" or "Name <email>".
func parseRecipient(s string) EmailRecipient {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "<"); i >= 0 && strings.HasSuffix(s, ">") {
		return EmailRecipient{Name: strings.TrimSpace(s[:i]), Email: strings.TrimSpace(s[i+1 : len(s)-1])}
	}
	return EmailRecipient{Email: s}
}

func logVerbose(format string, args ...interface{}) {
	if verbose {
		log.Printf("[VERBOSE] "+format, args...)
	}
}
