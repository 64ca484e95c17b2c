/*
Copyright © 2025 Daniel Wrenner <daniel@dwrenner.dev>
*/

package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"reflect"
	"strings"

	"github.com/fatih/structs"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/dwrenner/wp-sync/wordpress"
)

var (
	// Store the result of binding cobra flags
	Config string
	Debug  bool

	// Command to run to retrieve the WordPress application password
	AuthPasswordCmd []string

	AuthUsername string
	LocalStore   string
	Site         string
	Workers      int

	ParsedConfig YamlConfig
)

// Build the cobra command that handles our command line tool.
var rootCmd = &cobra.Command{
	Use:   "wp-sync",
	Short: "Sync a WordPress site with a local file tree",
	Long: `
Export a WordPress site's posts, pages, media and plugin metadata to a local directory tree, and
import such a tree back into a site, including a fresh one.  Plugin-owned metadata is grouped per
plugin so you can see exactly what each extension stored.
`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// You can bind cobra and viper in a few locations, but PersistentPreRunE on the root command works well
		if err := initializeConfig(cmd); err != nil {
			return fmt.Errorf("wp-sync: failed to initialise config: %w", err)
		}

		if len(AuthPasswordCmd) < 1 {
			return fmt.Errorf("wp-sync: please provide --auth-password-cmd")
		}
		return nil
	},
}

func init() {
	// Define cobra flags, the default value has the lowest (least significant) precedence
	rootCmd.PersistentFlags().StringVar(&Config, "config", "", "config file location (default: ~/.config/wp-sync.yaml, respects WP_SYNC_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "display debug output")
	rootCmd.PersistentFlags().StringSliceVar(&AuthPasswordCmd, "auth-password-cmd", []string{}, "shell command to retrieve the WordPress application password")
	rootCmd.PersistentFlags().StringVar(&LocalStore, "store", "", "location to save exported sites")
	rootCmd.PersistentFlags().StringVar(&AuthUsername, "auth-username", "", "your WordPress username")
	rootCmd.PersistentFlags().StringVar(&Site, "site", "", "your site's URL, e.g. https://example.com")
	rootCmd.PersistentFlags().IntVar(&Workers, "workers", 4, "concurrent media transfers per item")
}

func initializeConfig(cmd *cobra.Command) error {
	if Config == "" {
		// Did the user provide an ENV?
		envConfig := os.Getenv("WP_SYNC_CONFIG")
		if envConfig != "" {
			Config = envConfig
		} else {
			// As fallback, search for config in home XDG-ish directory
			Config = "~/.config/wp-sync.yaml"
		}
	}
	config, err := homedir.Expand(Config)
	if err != nil {
		return fmt.Errorf("wp-sync: unable to expand homedir: %w", err)
	}
	Config = config

	// Use config file from the flag.
	if _, err := os.Stat(Config); errors.Is(err, os.ErrNotExist) {
		fmt.Printf("Couldn't read config file %s, does it exist?  Override with --config.\n", Config)
		return fmt.Errorf("wp-sync: specified config file does not exist: %w", err)
	}

	yamlFile, err := os.ReadFile(Config)
	if err != nil {
		return fmt.Errorf("wp-sync: error reading config file: %w", err)
	}

	// I'd like to bark if a user sets a flag we don't recognise:
	if err := yaml.UnmarshalStrict(yamlFile, &ParsedConfig); err != nil {
		return fmt.Errorf("wp-sync: issue parsing config file: %w", err)
	}

	// Bind the current command's flags to the parsed config
	if err := bindFlags(cmd, ParsedConfig); err != nil {
		return fmt.Errorf("wp-sync: failed to bind flags: %w", err)
	}

	return nil
}

type YamlConfig struct {
	WriteMarkdown *bool `yaml:"write-markdown"`
	WithVCR       *bool `yaml:"with-vcr"`
	DryRun        *bool `yaml:"dry-run"`

	StorePath       string   `yaml:"store"`
	Site            string   `yaml:"site"`
	AuthUsername    string   `yaml:"auth-username"`
	AuthPasswordCmd []string `yaml:"auth-password-cmd"`
	Statuses        []string `yaml:"status"`
	Mode            string   `yaml:"mode"`
	Workers         *int     `yaml:"workers"`
}

// Bind each cobra flag to its associated config file entry
func bindFlags(cmd *cobra.Command, v YamlConfig) error {
	for _, field := range structs.Fields(v) {
		key := field.Tag("yaml")
		if key == "" {
			return fmt.Errorf("wp-sync: could not retrieve struct tag 'yaml'")
		}
		if flag := cmd.Flag(key); flag == nil {
			// hmm... the flag is unknown.  but that can legitimately happen if you're running
			// e.g. `list plugins` which has no `mode` flag but your YAML file does define it...
			continue
		}
		if !cmd.Flags().Changed(key) {
			switch field.Kind() {
			case reflect.Ptr:
				// YamlConfig only uses pointers for bools and ints, so a
				// type switch covers it
				switch value := field.Value().(type) {
				case *bool:
					if value != nil {
						cmd.Flags().Set(key, fmt.Sprintf("%v", *value))
					}
				case *int:
					if value != nil {
						cmd.Flags().Set(key, fmt.Sprintf("%d", *value))
					}
				default:
					return fmt.Errorf("wp-sync: found unrecognised field: %+v", field)
				}

			case reflect.String:
				s, ok := field.Value().(string)
				if !ok {
					return fmt.Errorf("wp-sync: found unrecognised field: %+v", field)
				}
				if s != "" {
					cmd.Flags().Set(key, s)
				}

			case reflect.Slice:
				ss, ok := field.Value().([]string)
				if !ok {
					return fmt.Errorf("wp-sync: found unrecognised field: %+v", field)
				}
				for _, s := range ss {
					// yes, repeatedly calling Set() appends to the slice...
					cmd.Flags().Set(key, s)
				}

			default:
				return fmt.Errorf("wp-sync: found unrecognised field: %+v", field)
			}
		}
	}

	return nil
}

// apiFromFlags runs the auth-password-cmd and builds the API client every
// site-facing command shares.
func apiFromFlags() (*wordpress.API, error) {
	passwordCmdOutput, err := exec.Command(AuthPasswordCmd[0], AuthPasswordCmd[1:]...).Output()
	if err != nil {
		return nil, fmt.Errorf("wp-sync: couldn't execute auth-password-cmd '%v': %w", AuthPasswordCmd, err)
	}

	password := strings.Split(string(passwordCmdOutput), "\n")[0]

	api, err := wordpress.NewAPI(Site, AuthUsername, password)
	if err != nil {
		return nil, fmt.Errorf("wp-sync: WordPress API creation failed: %w", err)
	}

	return api, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Flags are only available after (or inside, presumably) the .Execute() thing.
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("wp-sync: execution error: %w", err)
	}

	return nil
}
