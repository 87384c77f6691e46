// Package input resolves the document URIs accepted on the command line to
// readable streams.
package input

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/cli/go-gh/v2"

	"github.com/doctypetool/doctype/pkg/constants"
)

// Kind is the kind of location a URI names.
type Kind int

const (
	KindFile Kind = iota
	KindStdin
	KindGitHub
)

func (k Kind) String() string {
	switch k {
	case KindStdin:
		return "stdin"
	case KindGitHub:
		return "github"
	default:
		return "file"
	}
}

// StdinURI names standard input.
const StdinURI = "-"

// Source is a parsed input URI.
type Source struct {
	URI  string
	Kind Kind

	// Path is the local file path for KindFile.
	Path string

	// Owner, Repo, RepoPath and Ref locate a file in a GitHub repository.
	// An empty Ref means the default branch.
	Owner    string
	Repo     string
	RepoPath string
	Ref      string
}

// ghExec runs a gh command; replaced in tests.
var ghExec = gh.Exec

// Parse classifies uri. Accepted forms are "-", file:// URLs, plain paths
// and gh:owner/repo/path[@ref].
func Parse(uri string) (Source, error) {
	switch {
	case uri == "":
		return Source{}, fmt.Errorf("empty input URI")

	case uri == StdinURI:
		return Source{URI: uri, Kind: KindStdin}, nil

	case strings.HasPrefix(uri, "file://"):
		u, err := url.Parse(uri)
		if err != nil {
			return Source{}, fmt.Errorf("invalid file URL %q: %w", uri, err)
		}
		if u.Host != "" && u.Host != "localhost" {
			return Source{}, fmt.Errorf("invalid file URL %q: remote host %q is not supported", uri, u.Host)
		}
		if u.Path == "" {
			return Source{}, fmt.Errorf("invalid file URL %q: missing path", uri)
		}
		return Source{URI: uri, Kind: KindFile, Path: u.Path}, nil

	case strings.HasPrefix(uri, constants.GitHubInputPrefix):
		return parseGitHub(uri)
	}

	return Source{URI: uri, Kind: KindFile, Path: uri}, nil
}

func parseGitHub(uri string) (Source, error) {
	location := strings.TrimPrefix(uri, constants.GitHubInputPrefix)

	ref := ""
	if at := strings.LastIndex(location, "@"); at > strings.LastIndex(location, "/") {
		location, ref = location[:at], location[at+1:]
		if ref == "" {
			return Source{}, fmt.Errorf("invalid GitHub input %q: empty ref after '@'", uri)
		}
	}

	parts := strings.SplitN(location, "/", 3)
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || strings.Trim(parts[2], "/") == "" {
		return Source{}, fmt.Errorf("invalid GitHub input %q: expected %sowner/repo/path[@ref]", uri, constants.GitHubInputPrefix)
	}

	return Source{
		URI:      uri,
		Kind:     KindGitHub,
		Owner:    parts[0],
		Repo:     parts[1],
		RepoPath: strings.Trim(parts[2], "/"),
		Ref:      ref,
	}, nil
}

// ContentsEndpoint is the REST path of the file in the repository contents API.
func (s Source) ContentsEndpoint() string {
	segments := strings.Split(s.RepoPath, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	endpoint := fmt.Sprintf("repos/%s/%s/contents/%s", s.Owner, s.Repo, strings.Join(segments, "/"))
	if s.Ref != "" {
		endpoint += "?ref=" + url.QueryEscape(s.Ref)
	}
	return endpoint
}

// Open returns a reader for uri. Closing a stdin reader leaves os.Stdin open.
func Open(uri string) (io.ReadCloser, error) {
	src, err := Parse(uri)
	if err != nil {
		return nil, err
	}
	return src.Open()
}

// Open returns a reader for the source.
func (s Source) Open() (io.ReadCloser, error) {
	switch s.Kind {
	case KindStdin:
		return io.NopCloser(os.Stdin), nil
	case KindGitHub:
		content, err := s.fetch()
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(content)), nil
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	return f, nil
}

// ReadAll reads the whole document named by uri.
func ReadAll(uri string) ([]byte, error) {
	rc, err := Open(uri)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", uri, err)
	}
	return data, nil
}

func (s Source) fetch() ([]byte, error) {
	stdOut, stdErr, err := ghExec("api", s.ContentsEndpoint(), "-H", "Accept: application/vnd.github.raw")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w (stderr: %s)", s.URI, err, strings.TrimSpace(stdErr.String()))
	}
	return stdOut.Bytes(), nil
}
