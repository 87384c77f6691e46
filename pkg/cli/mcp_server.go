package cli

import (
	"bytes"
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/doctypetool/doctype/pkg/constants"
	"github.com/doctypetool/doctype/pkg/doctype"
	"github.com/doctypetool/doctype/pkg/reportfmt"
)

// InspectToolName is the MCP tool that reports and rewrites a declaration.
const InspectToolName = "inspect_doctype"

// InspectArgs are the arguments of the inspect_doctype tool.
type InspectArgs struct {
	Path         string `json:"path" jsonschema:"document to inspect: a file path, file:// URL or gh:owner/repo/path[@ref]"`
	SystemID     string `json:"system_id,omitempty" jsonschema:"SYSTEM identifier to write into the declaration"`
	PublicID     string `json:"public_id,omitempty" jsonschema:"PUBLIC identifier to write into the declaration"`
	Root         string `json:"root,omitempty" jsonschema:"root element name to write into the declaration"`
	OmitSystemID bool   `json:"omit_system_id,omitempty" jsonschema:"remove the SYSTEM identifier, and with it the PUBLIC identifier"`
	OmitPublicID bool   `json:"omit_public_id,omitempty" jsonschema:"remove the PUBLIC identifier"`
}

func (a InspectArgs) policy() doctype.OverridePolicy {
	return doctype.OverridePolicy{
		ForcedPublicID: a.PublicID,
		ForcedSystemID: a.SystemID,
		ForcedRoot:     a.Root,
		OmitPublicID:   a.OmitPublicID,
		OmitSystemID:   a.OmitSystemID,
	}
}

// NewMCPServer returns an MCP server exposing the inspect_doctype tool.
func NewMCPServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: constants.CLIName, Version: GetVersion()}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        InspectToolName,
		Description: "Report the DOCTYPE declaration of an XML document and every parse diagnostic. Override fields show the declaration the document would be rewritten with.",
	}, inspectTool)
	return server
}

// RunMCPServer serves MCP over stdin/stdout until the client disconnects or ctx is cancelled.
func RunMCPServer(ctx context.Context) error {
	return NewMCPServer().Run(ctx, mcp.NewStdioTransport())
}

func inspectTool(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[InspectArgs]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	if args.Path == "" {
		return toolError("path is required"), nil
	}
	policy := args.policy()
	if err := policy.Validate(); err != nil {
		return toolError(err.Error()), nil
	}

	doc := inspectDocument(args.Path, policy, nil)
	if doc.Source == nil && doc.Err != nil {
		return toolError(doc.Err.Error()), nil
	}

	var report bytes.Buffer
	if err := reportfmt.Write(&report, reportfmt.FormatJSON, doc.Report); err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	declaration := "no DOCTYPE declaration"
	if doc.Report.HasDeclaration() {
		declaration = doc.Report.Declaration.Markup()
	}

	// a fatal diagnostic is part of the report, not a tool failure
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: report.String()},
			&mcp.TextContent{Text: declaration},
		},
	}, nil
}

func toolError(message string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
	}
}
