// Package gitstatus queries repository state through the git command line.
// The oracle is consulted exactly once per invocation; the returned path set
// is an immutable snapshot of repository state at the start of the run.
package gitstatus

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/temirov/strut/internal/types"
)

// ErrNotARepository reports that the queried path is not inside a git work tree.
var ErrNotARepository = errors.New("not a git repository (or any of the parent directories)")

const (
	gitExecutableName       = "git"
	errorRunGitFormat       = "running git %s: %w"
	errorCurrentBranchFmt   = "resolving current branch for %s: %w"
	errorListPathsFormat    = "listing %s paths: %w"
	errorUnknownRelationFmt = "unknown git relationship %q"
)

// CommandRunner executes one git command in a working directory and returns
// its standard output. The seam exists so tests can substitute canned output.
type CommandRunner func(executionContext context.Context, workingDirectory string, arguments ...string) (string, error)

// Oracle resolves git path sets for a repository.
type Oracle struct {
	runCommand CommandRunner
}

// NewOracle constructs an Oracle backed by the git executable.
func NewOracle() *Oracle {
	return &Oracle{runCommand: runGitCommand}
}

// NewOracleWithRunner constructs an Oracle with a custom command runner.
func NewOracleWithRunner(runner CommandRunner) *Oracle {
	return &Oracle{runCommand: runner}
}

// runGitCommand executes git with the provided arguments.
func runGitCommand(executionContext context.Context, workingDirectory string, arguments ...string) (string, error) {
	gitCommand := exec.CommandContext(executionContext, gitExecutableName, arguments...)
	gitCommand.Dir = workingDirectory
	outputBytes, runError := gitCommand.Output()
	if runError != nil {
		return "", fmt.Errorf(errorRunGitFormat, strings.Join(arguments, " "), runError)
	}
	return string(outputBytes), nil
}

// RepositoryRoot returns the top-level work tree directory containing path.
// It returns ErrNotARepository when path is outside any repository.
func (oracle *Oracle) RepositoryRoot(executionContext context.Context, path string) (string, error) {
	rootOutput, rootError := oracle.runCommand(executionContext, path, "rev-parse", "--show-toplevel")
	if rootError != nil {
		return "", ErrNotARepository
	}
	repositoryRoot := strings.TrimSpace(rootOutput)
	if repositoryRoot == "" {
		return "", ErrNotARepository
	}
	return filepath.Clean(repositoryRoot), nil
}

// CurrentBranch returns the checked-out branch name, or an empty string on a
// detached HEAD. It is best-effort and only used for display.
func (oracle *Oracle) CurrentBranch(executionContext context.Context, path string) (string, error) {
	branchOutput, branchError := oracle.runCommand(executionContext, path, "branch", "--show-current")
	if branchError != nil {
		return "", fmt.Errorf(errorCurrentBranchFmt, path, branchError)
	}
	return strings.TrimSpace(branchOutput), nil
}

// PathSet returns the canonical absolute paths satisfying the relationship,
// queried from the repository containing path. The history relationship is
// declared but never resolved: it yields a nil set, leaving the walk
// unrestricted.
func (oracle *Oracle) PathSet(executionContext context.Context, path string, relationship types.GitRelationship) (map[string]struct{}, error) {
	if relationship == types.GitRelationshipNone || relationship == types.GitRelationshipHistory {
		return nil, nil
	}

	repositoryRoot, rootError := oracle.RepositoryRoot(executionContext, path)
	if rootError != nil {
		return nil, rootError
	}

	var listArguments []string
	switch relationship {
	case types.GitRelationshipTracked:
		listArguments = []string{"ls-files"}
	case types.GitRelationshipUntracked:
		listArguments = []string{"ls-files", "--others", "--exclude-standard"}
	case types.GitRelationshipStaged:
		listArguments = []string{"diff", "--name-only", "--cached"}
	case types.GitRelationshipChanged:
		listArguments = []string{"diff", "--name-only"}
	default:
		return nil, fmt.Errorf(errorUnknownRelationFmt, relationship)
	}

	listOutput, listError := oracle.runCommand(executionContext, repositoryRoot, listArguments...)
	if listError != nil {
		return nil, fmt.Errorf(errorListPathsFormat, relationship, listError)
	}

	pathSet := make(map[string]struct{})
	for _, relativeLine := range strings.Split(listOutput, "\n") {
		trimmedLine := strings.TrimSpace(relativeLine)
		if trimmedLine == "" {
			continue
		}
		absolutePath := filepath.Clean(filepath.Join(repositoryRoot, filepath.FromSlash(trimmedLine)))
		pathSet[absolutePath] = struct{}{}
	}
	return pathSet, nil
}
