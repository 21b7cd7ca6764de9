package app

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/blackwell-systems/storyshelf/internal/ingest"
	"github.com/blackwell-systems/storyshelf/internal/tui"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ok prints a green success line.
func ok(format string, a ...interface{}) {
	fmt.Println(color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.YellowString("!"), fmt.Sprintf(format, a...))
}

// header prints a cyan section heading.
func header(format string, a ...interface{}) {
	fmt.Println(color.CyanString(fmt.Sprintf(format, a...)))
}

func printField(label, value string) {
	fmt.Printf("  %-14s %s\n", color.CyanString(label+":"), value)
}

// confirm asks a yes/no question on stdin. Anything but y/yes declines.
func confirm(question string) bool {
	fmt.Printf("%s (y/N): ", question)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// readSecret prompts for a secret without echo on a terminal and reads one
// line from stdin otherwise.
func readSecret(cmd *cobra.Command, label string) (string, error) {
	if tui.ShouldUseTUI(cmd) {
		return tui.PromptSecret(label)
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPDF loads a document from a path or "-" for stdin.
func readPDF(input string) (*ingest.Payload, error) {
	src, err := ingest.Resolve(input)
	if err != nil {
		return nil, err
	}
	return src.Load(ingest.MaxSize)
}

// completeStoryIDs offers story ids with their titles for shell completion.
func completeStoryIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 || lib == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	stories, err := lib.Browse(cmd.Context(), catalog.Filter{})
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, st := range stories {
		if strings.HasPrefix(st.ID, toComplete) {
			out = append(out, st.ID+"\t"+st.Title)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
