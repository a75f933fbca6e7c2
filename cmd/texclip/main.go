package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/texclip/texclip/internal/app"
	"github.com/texclip/texclip/internal/counter"
	"github.com/texclip/texclip/internal/fetch"

	"github.com/spf13/cobra"
)

// buildConfig constructs an app.Config from command flags and arguments
func buildConfig(cmd *cobra.Command, args []string) (app.Config, error) {
	selector, _ := cmd.Flags().GetString("selector")
	includeAll, _ := cmd.Flags().GetBool("include-all")
	sanitize, _ := cmd.Flags().GetBool("sanitize")
	copyFlag, _ := cmd.Flags().GetBool("copy")
	watch, _ := cmd.Flags().GetBool("watch")
	watchInterval, _ := cmd.Flags().GetDuration("watch-interval")
	cooldown, _ := cmd.Flags().GetDuration("cooldown")
	stats, _ := cmd.Flags().GetBool("stats")
	countFlag, _ := cmd.Flags().GetString("count")
	mergeMath, _ := cmd.Flags().GetBool("merge-display-math")
	keepWikiStyling, _ := cmd.Flags().GetBool("keep-wiki-styling")
	blankLines, _ := cmd.Flags().GetInt("blank-lines")
	quiet, _ := cmd.Flags().GetBool("quiet")
	debug, _ := cmd.Flags().GetBool("debug")

	countingMethod, err := counter.ParseMethod(countFlag)
	if err != nil {
		return app.Config{}, err
	}

	// no arguments means the clipboard itself is the source; watch mode
	// always reads the clipboard
	sources := args
	if len(sources) == 0 {
		sources = []string{fetch.ClipboardSource}
	}
	if watch && len(args) > 0 {
		return app.Config{}, fmt.Errorf("--watch reads the clipboard and takes no sources")
	}

	// converting the clipboard in place implies copying the result back
	if !cmd.Flags().Changed("copy") && len(args) == 0 {
		copyFlag = true
	}

	return app.Config{
		Sources:          sources,
		Selector:         selector,
		IncludeAll:       includeAll,
		Sanitize:         sanitize,
		Copy:             copyFlag,
		Watch:            watch,
		WatchInterval:    watchInterval,
		Cooldown:         cooldown,
		CountingMethod:   countingMethod,
		ShowStats:        stats,
		MergeDisplayMath: mergeMath,
		KeepWikiStyling:  keepWikiStyling,
		MaxBlankLines:    blankLines,
		Quiet:            quiet,
		Debug:            debug,
	}, nil
}

// setupLogger configures the default slog logger based on debug mode
func setupLogger(debug bool) {
	var level slog.Level
	if debug {
		level = slog.LevelDebug
	} else {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

var rootCmd = &cobra.Command{
	Use:   "texclip [sources...]",
	Short: "Convert math-heavy HTML to clipboard-ready Markdown",
	Long: `Texclip converts HTML fragments into Markdown that pastes cleanly into
LLM chats and Markdown editors. Rendered math (KaTeX, MathJax, MediaWiki,
bare MathML) comes out as $...$ and $$ blocks, source listings as fenced
code blocks. Sources may be URLs, local files, standard input, or the
system clipboard.

Examples:
  texclip                         convert the clipboard in place
  texclip --watch                 keep converting as the clipboard changes
  texclip https://en.wikipedia.org/wiki/Energy
  cat fragment.html | texclip -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := buildConfig(cmd, args)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		setupLogger(config.Debug)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		result, err := app.Run(ctx, config)
		if err != nil {
			return fmt.Errorf("texclip failed: %w", err)
		}

		// clipboard-bound and watch runs acknowledge on stderr instead
		if !config.Copy && !config.Watch {
			fmt.Print(result)
		}

		return nil
	},
}

func init() {
	rootCmd.Flags().StringP("selector", "s", "", "CSS selector scoping the conversion")
	rootCmd.Flags().BoolP("include-all", "i", false, "Include all content without readability filtering")
	rootCmd.Flags().Bool("sanitize", false, "Strip scripts and event handlers before converting")

	// clipboard flags
	rootCmd.Flags().BoolP("copy", "c", false, "Copy the result to the clipboard (implied when reading the clipboard)")
	rootCmd.Flags().BoolP("watch", "w", false, "Watch the clipboard and convert HTML as it appears")
	rootCmd.Flags().Duration("watch-interval", app.DefaultWatchInterval, "Clipboard poll interval in watch mode")
	rootCmd.Flags().Duration("cooldown", app.DefaultCooldown, "Minimum delay between watch-mode conversions")

	// stats flags
	rootCmd.Flags().Bool("stats", false, "Report the size of the copied text")
	rootCmd.Flags().String("count", "tokens", "Counting method for --stats: tokens, words, or chars")

	// markdown postprocessing flags
	rootCmd.Flags().Bool("merge-display-math", false, "Merge adjacent display-math blocks")
	rootCmd.Flags().Bool("keep-wiki-styling", false, "Keep \\displaystyle macros and brace wrappers in MediaWiki math")
	rootCmd.Flags().Int("blank-lines", 0, "Maximum consecutive blank lines (default 1)")

	// other flags
	rootCmd.Flags().BoolP("quiet", "q", false, "Suppress the status line")
	rootCmd.Flags().BoolP("debug", "D", false, "Enable debug logging")
	_ = rootCmd.Flags().MarkHidden("debug")

	// a selector bypasses readability, so scoping flags are exclusive
	rootCmd.MarkFlagsMutuallyExclusive("selector", "include-all")
	rootCmd.MarkFlagsMutuallyExclusive("stats", "quiet")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
