package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doctypetool/doctype/pkg/cli"
	"github.com/doctypetool/doctype/pkg/config"
	"github.com/doctypetool/doctype/pkg/console"
	"github.com/doctypetool/doctype/pkg/constants"
	"github.com/doctypetool/doctype/pkg/doctype"
)

// Build-time variables set by GoReleaser
var (
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   constants.CLIName + " [flags] <document>",
	Short: "Inspect and rewrite the DOCTYPE declaration of XML documents",
	Long: `Inspect and rewrite the DOCTYPE declaration of an XML document.

The document is written to stdout unchanged except for its DOCTYPE
declaration, which is rebuilt from the declared values and the override
options. A report of the declaration found and every parse diagnostic is
written to stderr.

A document is a file path, "-" for stdin, a file:// URL or
` + constants.GitHubInputPrefix + `owner/repo/path[@ref] for a file in a GitHub repository.

Examples:
  ` + constants.CLIName + ` page.xhtml                                # Report and re-emit unchanged
  ` + constants.CLIName + ` -s xhtml1-strict.dtd page.xhtml           # Replace the SYSTEM identifier
  ` + constants.CLIName + ` -P page.xhtml                             # Drop the PUBLIC identifier
  ` + constants.CLIName + ` -S -r html page.xhtml                     # Bare <!DOCTYPE html>
  ` + constants.CLIName + ` -q -f text page.xhtml                     # Report only, for a terminal
  ` + constants.CLIName + ` ` + constants.GitHubInputPrefix + `w3c/site/index.xhtml@main -o index.xhtml

Only the first document argument is processed; use "` + constants.CLIName + ` report" for many.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		settings := loadSettings(cmd)
		if len(args) > 1 && settings.Verbose {
			fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf("Ignoring %d extra document arguments", len(args)-1)))
		}
		output, _ := cmd.Flags().GetString("output")
		exitOnError(cli.RunRewrite(args[0], cli.RewriteOptions{
			Settings: settings,
			Output:   output,
			Stdout:   os.Stdout,
			Stderr:   os.Stderr,
		}))
	},
}

var reportCmd = &cobra.Command{
	Use:   "report <document>...",
	Short: "Report the DOCTYPE declarations of many documents without rewriting them",
	Long: `Report the DOCTYPE declaration and parse diagnostics of each document.

Documents are processed in parallel; reports are written to stdout in
argument order, followed by a summary table on stderr.

Examples:
  ` + constants.CLIName + ` report docs/*.xhtml
  ` + constants.CLIName + ` report -f sarif --report-file doctype.sarif docs/*.xml
  ` + constants.CLIName + ` report -j 1 a.xml b.xml`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		settings := loadSettings(cmd)
		exitOnError(cli.RunReport(cmd.Context(), args, cli.ReportOptions{
			Settings: settings,
			Stdout:   os.Stdout,
			Stderr:   os.Stderr,
		}))
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <file-or-directory>",
	Short: "Report documents again whenever they change",
	Long: `Watch a document, or a directory of documents, and report again after
each change. Directory watching reacts to the extensions listed under
watch.extensions in the config file.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		settings := loadSettings(cmd)
		exitOnError(cli.RunWatch(cmd.Context(), args[0], cli.WatchOptions{
			Settings: settings,
			Stdout:   os.Stdout,
			Stderr:   os.Stderr,
		}))
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the " + cli.InspectToolName + " tool over the Model Context Protocol on stdio",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(cli.RunMCPServer(cmd.Context()))
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the " + constants.DefaultConfigFile + " configuration file",
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the configuration file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(config.Schema())
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate a configuration file against the schema",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := constants.DefaultConfigFile
		if len(args) > 0 {
			path = args[0]
		}
		if err := config.ValidateFile(path); err != nil {
			exitOnError(err)
		}
		fmt.Fprintln(os.Stderr, console.FormatSuccessMessage(fmt.Sprintf("%s is valid", path)))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(console.FormatInfoMessage(fmt.Sprintf("%s version %s", constants.CLIName, cli.GetVersion())))
	},
}

// loadSettings merges flags, environment and config file, exiting on failure
func loadSettings(cmd *cobra.Command) *config.Settings {
	configFile, _ := cmd.Flags().GetString("config")
	settings, err := config.Load(config.LoadOptions{ConfigFile: configFile, Flags: cmd.Flags()})
	if err != nil {
		exitOnError(err)
	}
	console.SetColorMode(settings.ColorMode())
	if settings.Verbose && settings.ConfigFile != "" {
		fmt.Fprintln(os.Stderr, console.FormatVerboseMessage(fmt.Sprintf("Using config file %s", settings.ConfigFile)))
	}
	return settings
}

func exitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, cli.FormatError(err))
	os.Exit(cli.ExitCode(err))
}

// flagName strips the leading dashes so conflict messages name the flags as typed
func flagName(option string) string {
	return strings.TrimPrefix(option, "--")
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP(flagName(doctype.OptionSystemID), "s", "", "Write this SYSTEM identifier into the declaration")
	flags.StringP(flagName(doctype.OptionPublicID), "p", "", "Write this PUBLIC identifier into the declaration")
	flags.BoolP(flagName(doctype.OptionOmitSystemID), "S", false, "Remove the SYSTEM identifier, and with it the PUBLIC identifier")
	flags.BoolP(flagName(doctype.OptionOmitPublicID), "P", false, "Remove the PUBLIC identifier")
	flags.StringP(flagName(doctype.OptionRoot), "r", "", "Write this root element name into the declaration")
	flags.BoolP("quiet", "q", false, "Do not write the document; with report, do not print the summary")
	flags.StringP("format", "f", "xml", "Report format (xml, text, json, yaml, sarif)")
	flags.String("report-file", "", "Write the report to this file instead of the console")
	flags.String("config", "", "Configuration file (default ./"+constants.DefaultConfigFile+" when present)")
	flags.String("color", "auto", "Color console output (auto, always, never)")
	flags.BoolP("verbose", "v", false, "Enable verbose output showing detailed information")

	rootCmd.Flags().StringP("output", "o", "", "Write the document to this file instead of stdout")

	reportCmd.Flags().IntP("jobs", "j", 0, "Documents processed in parallel (default: number of CPUs)")

	configCmd.AddCommand(configSchemaCmd)
	configCmd.AddCommand(configCheckCmd)

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	// Set version information in the CLI package
	cli.SetVersionInfo(version)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		os.Exit(cli.ExitUsage)
	}
}
