// Package cli provides the command line interface.
package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/temirov/strut/internal/config"
	"github.com/temirov/strut/internal/gitstatus"
	"github.com/temirov/strut/internal/rules"
	"github.com/temirov/strut/internal/search"
	"github.com/temirov/strut/internal/summary"
	"github.com/temirov/strut/internal/traverse"
	"github.com/temirov/strut/internal/types"
)

const (
	rootUse              = "strut [depth]"
	rootShortDescription = "a smarter tree command with intelligent defaults"
	rootLongDescription  = `strut renders a directory tree with a layered ignore policy, optional
git-aware filtering, and size-aware pruning.

The positional depth selects how many directory levels to expand: absent
means unbounded, 0 shows the aggregate summary view, and any positive number
expands that many levels.`
	rootUsageExample = `  # Unbounded tree of the current directory
  strut

  # Two levels, with sizes, skipping folders over 100MB
  strut 2 --size --skip-large 100

  # Only git-tracked files, walk rooted at the repository top
  strut --gr

  # Summary view
  strut 0`

	searchUse              = "search <pattern> [path]"
	searchShortDescription = "find entries matching a glob pattern"
	searchLongDescription  = `Search every entry name below the path against a glob pattern where "*"
matches any run of characters and "?" exactly one. Results render as a
restricted tree of the matches and their ancestors, or as a flat path list
with --flat.`
	searchUsageExample = `  # All dotenv files as a flat list
  strut search "*.env" --flat

  # Go sources, at most three levels deep
  strut search "*.go" --depth 3`

	configUse              = "config"
	configShortDescription = "manage saved ignore patterns"
	configListUse          = "list"
	configListShort        = "print the saved ignore patterns"
	configAddUse           = "add <patterns>"
	configAddShort         = "save comma-separated ignore patterns"
	configClearUse         = "clear"
	configClearShort       = "remove every saved ignore pattern"

	pathFlagName          = "path"
	pathFlagShorthand     = "p"
	pathFlagDescription   = "starting directory"
	gitFlagName           = "git"
	gitFlagShorthand      = "g"
	gitFlagDescription    = "show git-tracked files only"
	gitUntrackedFlagName  = "gu"
	gitUntrackedFlagDesc  = "show untracked files only"
	gitStagedFlagName     = "gs"
	gitStagedFlagDesc     = "show staged files only"
	gitChangedFlagName    = "gc"
	gitChangedFlagDesc    = "show files with unstaged changes only"
	gitHistoryFlagName    = "gh"
	gitHistoryFlagDesc    = "accepted for compatibility; walks unrestricted"
	gitRootFlagName       = "gr"
	gitRootFlagDesc       = "like --git, rooted at the repository top"
	gitUntrackedRootFlag  = "gur"
	gitUntrackedRootDesc  = "like --gu, rooted at the repository top"
	gitStagedRootFlag     = "gsr"
	gitStagedRootDesc     = "like --gs, rooted at the repository top"
	gitChangedRootFlag    = "gcr"
	gitChangedRootDesc    = "like --gc, rooted at the repository top"
	gitHistoryRootFlag    = "ghr"
	gitHistoryRootDesc    = "like --gh, rooted at the repository top"
	ignoreFlagName        = "ignore"
	ignoreFlagShorthand   = "i"
	ignoreFlagDescription = "comma-separated glob patterns to ignore (e.g. \"*.log,temp*\")"
	skipLargeFlagName     = "skip-large"
	skipLargeShorthand    = "s"
	skipLargeDescription  = "skip folders larger than this many MB"
	sizeFlagName          = "size"
	sizeFlagShorthand     = "z"
	sizeFlagDescription   = "show file sizes"
	noIgnoreFlagName      = "no-ignore"
	noIgnoreShorthand     = "n"
	noIgnoreDescription   = "disable ignores: all, defaults, config, or one default directory name"
	copyFlagName          = "copy"
	copyFlagDescription   = "copy the rendered output to the clipboard"
	versionFlagName       = "version"
	versionFlagDesc       = "display application version"
	searchDepthFlagName   = "depth"
	searchDepthDesc       = "maximum search depth (0 = unbounded)"
	flatFlagName          = "flat"
	flatFlagDescription   = "print matches as a flat path list"

	noIgnoreAllValue      = "all"
	noIgnoreDefaultsValue = "defaults"
	noIgnoreConfigValue   = "config"

	defaultPath      = "."
	versionTemplate  = "strut version: %s\n"
	patternSeparator = ","

	errorInvalidDepthFormat   = "invalid depth %q"
	errorPathMissingFormat    = "path '%s' does not exist"
	errorStatFormat           = "unable to inspect '%s': %w"
	errorNotADirectoryFormat  = "path '%s' is not a directory"
	errorAbsolutePathFormat   = "unable to resolve '%s': %w"
	warningLoadPatternsFormat = "Warning: unable to load saved ignore patterns: %v\n"
	warningClipboardFormat    = "Warning: unable to copy output to clipboard: %v\n"
	savedPatternsFormat       = "saved %d pattern(s) to %s\n"
	clearedPatternsFormat     = "cleared saved patterns in %s\n"
	noSavedPatternsMessage    = "no saved ignore patterns"

	megabyteInBytes = int64(1024 * 1024)
)

// rootOptions stores the root command's flag values.
type rootOptions struct {
	rootPath           string
	gitTracked         bool
	gitUntracked       bool
	gitStaged          bool
	gitChanged         bool
	gitHistory         bool
	gitTrackedRoot     bool
	gitUntrackedRoot   bool
	gitStagedRoot      bool
	gitChangedRoot     bool
	gitHistoryRoot     bool
	ignoreList         string
	skipLargeMegabytes int64
	showSizes          bool
	noIgnore           string
	copyToClipboard    bool
}

// Execute runs the strut application.
func Execute() error {
	return createRootCommand().Execute()
}

// createRootCommand builds the root Cobra command with its subcommands.
func createRootCommand() *cobra.Command {
	var options rootOptions
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, applicationVersion())
				os.Exit(0)
			}
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return runRoot(command, arguments, options)
		},
	}

	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDesc)
	rootCommand.Flags().StringVarP(&options.rootPath, pathFlagName, pathFlagShorthand, defaultPath, pathFlagDescription)
	rootCommand.Flags().BoolVarP(&options.gitTracked, gitFlagName, gitFlagShorthand, false, gitFlagDescription)
	rootCommand.Flags().BoolVar(&options.gitUntracked, gitUntrackedFlagName, false, gitUntrackedFlagDesc)
	rootCommand.Flags().BoolVar(&options.gitStaged, gitStagedFlagName, false, gitStagedFlagDesc)
	rootCommand.Flags().BoolVar(&options.gitChanged, gitChangedFlagName, false, gitChangedFlagDesc)
	rootCommand.Flags().BoolVar(&options.gitHistory, gitHistoryFlagName, false, gitHistoryFlagDesc)
	rootCommand.Flags().BoolVar(&options.gitTrackedRoot, gitRootFlagName, false, gitRootFlagDesc)
	rootCommand.Flags().BoolVar(&options.gitUntrackedRoot, gitUntrackedRootFlag, false, gitUntrackedRootDesc)
	rootCommand.Flags().BoolVar(&options.gitStagedRoot, gitStagedRootFlag, false, gitStagedRootDesc)
	rootCommand.Flags().BoolVar(&options.gitChangedRoot, gitChangedRootFlag, false, gitChangedRootDesc)
	rootCommand.Flags().BoolVar(&options.gitHistoryRoot, gitHistoryRootFlag, false, gitHistoryRootDesc)
	rootCommand.Flags().StringVarP(&options.ignoreList, ignoreFlagName, ignoreFlagShorthand, "", ignoreFlagDescription)
	rootCommand.Flags().Int64VarP(&options.skipLargeMegabytes, skipLargeFlagName, skipLargeShorthand, 0, skipLargeDescription)
	rootCommand.Flags().BoolVarP(&options.showSizes, sizeFlagName, sizeFlagShorthand, false, sizeFlagDescription)
	rootCommand.Flags().StringVarP(&options.noIgnore, noIgnoreFlagName, noIgnoreShorthand, "", noIgnoreDescription)
	rootCommand.Flags().BoolVar(&options.copyToClipboard, copyFlagName, false, copyFlagDescription)

	rootCommand.AddCommand(
		createSearchCommand(),
		createConfigCommand(),
	)
	return rootCommand
}

// runRoot dispatches the root command: summary view at depth zero, the
// filtered tree walk otherwise.
func runRoot(command *cobra.Command, arguments []string, options rootOptions) error {
	requestedDepth, depthError := parseDepthArgument(arguments)
	if depthError != nil {
		return depthError
	}

	walkRoot, rootError := resolveDirectory(options.rootPath)
	if rootError != nil {
		return rootError
	}

	executionContext := command.Context()
	oracle := gitstatus.NewOracle()
	gitRelationship, rootAtRepositoryTop := resolveGitSelection(options)

	var gitPathSet map[string]struct{}
	if gitRelationship != types.GitRelationshipNone {
		repositoryRoot, repositoryError := oracle.RepositoryRoot(executionContext, walkRoot)
		if repositoryError != nil {
			return repositoryError
		}
		if rootAtRepositoryTop {
			walkRoot = repositoryRoot
		}
		resolvedPathSet, pathSetError := oracle.PathSet(executionContext, walkRoot, gitRelationship)
		if pathSetError != nil {
			return pathSetError
		}
		gitPathSet = resolvedPathSet
	}

	savedPatterns, savedPatternsError := config.LoadUserPatterns(walkRoot)
	if savedPatternsError != nil {
		fmt.Fprintf(os.Stderr, warningLoadPatternsFormat, savedPatternsError)
		savedPatterns = nil
	}
	mergedPatterns := append(append([]string{}, savedPatterns...), splitPatternList(options.ignoreList)...)

	colorized := isatty.IsTerminal(os.Stdout.Fd()) && !options.copyToClipboard

	if requestedDepth == 0 {
		branchName, _ := oracle.CurrentBranch(executionContext, walkRoot)
		return summary.Run(summary.Options{
			Root: walkRoot,
			// Saved and ad-hoc patterns apply here regardless of --no-ignore;
			// only the main traversal honors it.
			IgnorePatterns: rules.CompileIgnorePatterns(mergedPatterns),
			Branch:         branchName,
		}, os.Stdout, colorized)
	}

	walkConfiguration := buildWalkConfig(options, requestedDepth, mergedPatterns, gitRelationship, gitPathSet)

	if options.copyToClipboard {
		var renderedOutput bytes.Buffer
		traverse.NewWalker(walkConfiguration, &renderedOutput, false).Run(walkRoot)
		fmt.Print(renderedOutput.String())
		if clipboardError := clipboard.WriteAll(renderedOutput.String()); clipboardError != nil {
			fmt.Fprintf(os.Stderr, warningClipboardFormat, clipboardError)
		}
		return nil
	}

	traverse.NewWalker(walkConfiguration, os.Stdout, colorized).Run(walkRoot)
	return nil
}

// buildWalkConfig assembles the traversal configuration. Any --no-ignore
// value suppresses custom patterns for the main walk; "all" and "defaults"
// additionally lift the built-in deny lists, while a literal directory name
// re-admits just that one default.
func buildWalkConfig(
	options rootOptions,
	requestedDepth int,
	mergedPatterns []string,
	gitRelationship types.GitRelationship,
	gitPathSet map[string]struct{},
) *types.WalkConfig {
	customPatterns := mergedPatterns
	ignoreDefaultsDisabled := false
	ignoreOnlyPattern := ""
	switch options.noIgnore {
	case "":
	case noIgnoreAllValue, noIgnoreDefaultsValue:
		ignoreDefaultsDisabled = true
		customPatterns = nil
	case noIgnoreConfigValue:
		customPatterns = nil
	default:
		ignoreOnlyPattern = options.noIgnore
		customPatterns = nil
	}

	return &types.WalkConfig{
		MaxDepth:               requestedDepth,
		CustomIgnorePatterns:   rules.CompileIgnorePatterns(customPatterns),
		MaxSubtreeBytes:        options.skipLargeMegabytes * megabyteInBytes,
		GitPathSet:             gitPathSet,
		GitRelationship:        gitRelationship,
		ShowSizes:              options.showSizes,
		IgnoreDefaultsDisabled: ignoreDefaultsDisabled,
		IgnoreOnlyPattern:      ignoreOnlyPattern,
	}
}

// resolveGitSelection maps the git flags to one relationship. When several
// flags are set the more specific relationship wins:
// changed > staged > untracked > tracked > history.
func resolveGitSelection(options rootOptions) (types.GitRelationship, bool) {
	switch {
	case options.gitChanged || options.gitChangedRoot:
		return types.GitRelationshipChanged, options.gitChangedRoot
	case options.gitStaged || options.gitStagedRoot:
		return types.GitRelationshipStaged, options.gitStagedRoot
	case options.gitUntracked || options.gitUntrackedRoot:
		return types.GitRelationshipUntracked, options.gitUntrackedRoot
	case options.gitTracked || options.gitTrackedRoot:
		return types.GitRelationshipTracked, options.gitTrackedRoot
	case options.gitHistory || options.gitHistoryRoot:
		return types.GitRelationshipHistory, options.gitHistoryRoot
	default:
		return types.GitRelationshipNone, false
	}
}

// parseDepthArgument interprets the positional depth; absent means unbounded.
func parseDepthArgument(arguments []string) (int, error) {
	if len(arguments) == 0 {
		return types.UnlimitedDepth, nil
	}
	requestedDepth, parseError := strconv.Atoi(arguments[0])
	if parseError != nil || requestedDepth < 0 {
		return 0, fmt.Errorf(errorInvalidDepthFormat, arguments[0])
	}
	return requestedDepth, nil
}

// resolveDirectory converts the input to an absolute existing directory path.
// The result is the physical path with symlinks resolved: git path sets carry
// physical paths, so a logical walk root would never match them.
func resolveDirectory(inputPath string) (string, error) {
	absolutePath, absolutePathError := filepath.Abs(inputPath)
	if absolutePathError != nil {
		return "", fmt.Errorf(errorAbsolutePathFormat, inputPath, absolutePathError)
	}
	cleanPath := filepath.Clean(absolutePath)
	pathInfo, statError := os.Stat(cleanPath)
	if statError != nil {
		if os.IsNotExist(statError) {
			return "", fmt.Errorf(errorPathMissingFormat, inputPath)
		}
		return "", fmt.Errorf(errorStatFormat, inputPath, statError)
	}
	if !pathInfo.IsDir() {
		return "", fmt.Errorf(errorNotADirectoryFormat, inputPath)
	}
	resolvedPath, resolveError := filepath.EvalSymlinks(cleanPath)
	if resolveError != nil {
		return "", fmt.Errorf(errorAbsolutePathFormat, inputPath, resolveError)
	}
	return resolvedPath, nil
}

// splitPatternList splits a comma-separated glob list, dropping empty items.
func splitPatternList(patternList string) []string {
	if strings.TrimSpace(patternList) == "" {
		return nil
	}
	var patterns []string
	for _, pattern := range strings.Split(patternList, patternSeparator) {
		if trimmedPattern := strings.TrimSpace(pattern); trimmedPattern != "" {
			patterns = append(patterns, trimmedPattern)
		}
	}
	return patterns
}

// createSearchCommand returns the search subcommand.
func createSearchCommand() *cobra.Command {
	var searchDepth int
	var flatOutput bool

	searchCommand := &cobra.Command{
		Use:     searchUse,
		Short:   searchShortDescription,
		Long:    searchLongDescription,
		Example: searchUsageExample,
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(command *cobra.Command, arguments []string) error {
			searchRoot := defaultPath
			if len(arguments) == 2 {
				searchRoot = arguments[1]
			}
			resolvedRoot, rootError := resolveDirectory(searchRoot)
			if rootError != nil {
				return rootError
			}

			savedPatterns, savedPatternsError := config.LoadUserPatterns(resolvedRoot)
			if savedPatternsError != nil {
				fmt.Fprintf(os.Stderr, warningLoadPatternsFormat, savedPatternsError)
				savedPatterns = nil
			}

			maximumDepth := types.UnlimitedDepth
			if searchDepth > 0 {
				maximumDepth = searchDepth
			}

			return search.Run(search.Options{
				Pattern:        arguments[0],
				Root:           resolvedRoot,
				MaxDepth:       maximumDepth,
				Flat:           flatOutput,
				IgnorePatterns: rules.CompileIgnorePatterns(savedPatterns),
			}, os.Stdout, isatty.IsTerminal(os.Stdout.Fd()))
		},
	}

	searchCommand.Flags().IntVar(&searchDepth, searchDepthFlagName, 0, searchDepthDesc)
	searchCommand.Flags().BoolVar(&flatOutput, flatFlagName, false, flatFlagDescription)
	return searchCommand
}

// createConfigCommand returns the config subcommand with its maintenance verbs.
func createConfigCommand() *cobra.Command {
	configCommand := &cobra.Command{
		Use:   configUse,
		Short: configShortDescription,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	listCommand := &cobra.Command{
		Use:   configListUse,
		Short: configListShort,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			workingDirectory, workingDirectoryError := os.Getwd()
			if workingDirectoryError != nil {
				return workingDirectoryError
			}
			patterns, loadError := config.LoadUserPatterns(workingDirectory)
			if loadError != nil {
				return loadError
			}
			if len(patterns) == 0 {
				fmt.Println(noSavedPatternsMessage)
				return nil
			}
			for _, pattern := range patterns {
				fmt.Println(pattern)
			}
			return nil
		},
	}

	addCommand := &cobra.Command{
		Use:   configAddUse,
		Short: configAddShort,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			var patterns []string
			for _, argument := range arguments {
				patterns = append(patterns, splitPatternList(argument)...)
			}
			storePath, saveError := config.AddUserPatterns(patterns)
			if saveError != nil {
				return saveError
			}
			fmt.Printf(savedPatternsFormat, len(patterns), storePath)
			return nil
		},
	}

	clearCommand := &cobra.Command{
		Use:   configClearUse,
		Short: configClearShort,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			storePath, clearError := config.ClearUserPatterns()
			if clearError != nil {
				return clearError
			}
			fmt.Printf(clearedPatternsFormat, storePath)
			return nil
		},
	}

	configCommand.AddCommand(listCommand, addCommand, clearCommand)
	return configCommand
}
