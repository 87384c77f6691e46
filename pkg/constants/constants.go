package constants

// CLIName is the command name used in user-facing output
const CLIName = "doctype"

// EnvPrefix prefixes every environment variable the CLI reads, e.g. DOCTYPE_SYSTEM_ID
const EnvPrefix = "DOCTYPE"

// DefaultConfigFile is looked up in the working directory when --config is not given
const DefaultConfigFile = ".doctype.yaml"

// GitHubInputPrefix marks an input fetched from a GitHub repository, e.g. gh:owner/repo/path@ref
const GitHubInputPrefix = "gh:"

// WatchedExtensions are the file extensions the watch command reacts to in a directory
var WatchedExtensions = []string{".xml", ".xhtml", ".svg", ".xsl", ".xslt", ".rss", ".atom"}
