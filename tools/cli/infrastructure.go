// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/kovidgoyal/termprobe"
	"github.com/kovidgoyal/termprobe/tools/utils"
)

var RootCmd *cobra.Command

// GetTTYSize returns the columns and rows of the terminal STDOUT is connected to
func GetTTYSize() (int, int, error) {
	if stdout_is_terminal {
		return term.GetSize(int(os.Stdout.Fd()))
	}
	return 0, 0, fmt.Errorf("STDOUT is not a TTY")
}

func StdoutIsTerminal() bool { return stdout_is_terminal }

func add_choices(cmd *cobra.Command, flags *pflag.FlagSet, choices []string, name string, usage string) *string {
	cmd.Annotations["choices-"+name] = strings.Join(choices, "\000")
	return flags.String(name, choices[0], usage)
}

func PersistentChoices(cmd *cobra.Command, name string, usage string, choices ...string) *string {
	return add_choices(cmd, cmd.PersistentFlags(), choices, name, usage)
}

// ValidateChoices checks the values of flags created with Choices() on cmd
// and its parents
func ValidateChoices(cmd *cobra.Command, args []string) error {
	check := func(c *cobra.Command) error {
		for key, val := range c.Annotations {
			if name, found := strings.CutPrefix(key, "choices-"); found {
				allowed := strings.Split(val, "\000")
				if cval, err := cmd.Flags().GetString(name); err == nil && !slices.Contains(allowed, cval) {
					return fmt.Errorf("%s: Invalid value: %s. Allowed values are: %s", color.YellowString("--"+name), color.RedString(cval), strings.Join(allowed, ", "))
				}
			}
		}
		return nil
	}
	for c := cmd; c != nil; c = c.Parent() {
		if err := check(c); err != nil {
			return err
		}
	}
	return nil
}

var stdout_is_terminal = false
var title_fmt = color.New(color.FgBlue, color.Bold).SprintFunc()
var exe_fmt = color.New(color.FgYellow, color.Bold).SprintFunc()
var opt_fmt = color.New(color.FgGreen).SprintFunc()
var italic_fmt = color.New(color.Italic).SprintFunc()
var err_fmt = color.New(color.FgHiRed).SprintFunc()
var bold_fmt = color.New(color.Bold).SprintFunc()
var code_fmt = color.New(color.FgCyan).SprintFunc()
var yellow_fmt = color.New(color.FgYellow).SprintFunc()
var green_fmt = color.New(color.FgGreen).SprintFunc()

func format_line_with_indent(output io.Writer, text string, indent string, screen_width int) {
	x := len(indent)
	fmt.Fprint(output, indent)
	in_escape := 0
	var current_word strings.Builder
	var escapes strings.Builder

	print_word := func(r rune) {
		w := runewidth.StringWidth(current_word.String())
		if x+w > screen_width {
			fmt.Fprintln(output)
			fmt.Fprint(output, indent)
			x = len(indent)
			s := strings.TrimSpace(current_word.String())
			current_word.Reset()
			current_word.WriteString(s)
		}
		if escapes.Len() > 0 {
			io.WriteString(output, escapes.String())
			escapes.Reset()
		}
		if current_word.Len() > 0 {
			io.WriteString(output, current_word.String())
			current_word.Reset()
		}
		if r > 0 {
			current_word.WriteRune(r)
		}
		x += w
	}

	for i, r := range text {
		if in_escape > 0 {
			if in_escape == 1 && (r == ']' || r == '[') {
				in_escape = 2
				if r == ']' {
					in_escape = 3
				}
			}
			if (in_escape == 2 && r == 'm') || (in_escape == 3 && r == '\\' && text[i-1] == 0x1b) {
				in_escape = 0
			}
			escapes.WriteRune(r)
			continue
		}
		if r == 0x1b {
			in_escape = 1
			if current_word.Len() != 0 {
				print_word(0)
			}
			escapes.WriteRune(r)
			continue
		}
		if current_word.Len() != 0 && r != 0xa0 && unicode.IsSpace(r) {
			print_word(r)
		} else {
			current_word.WriteRune(r)
		}
	}
	if current_word.Len() != 0 || escapes.Len() != 0 {
		print_word(0)
	}
	if len(text) > 0 {
		fmt.Fprintln(output)
	}
}

var prettify_pat = regexp.MustCompile(":([a-z]+):`([^`]+)`")

func hyperlink_for_path(path string, text string) string {
	if !stdout_is_terminal {
		return text
	}
	path = filepath.ToSlash(utils.Abspath(path))
	host, err := os.Hostname()
	if err != nil {
		host = ""
	}
	return "\x1b]8;;file://" + host + path + "\x1b\\" + text + "\x1b]8;;\x1b\\"
}

// prettify expands the :role:`text` markup used in help texts
func prettify(text string) string {
	return prettify_pat.ReplaceAllStringFunc(text, func(match string) string {
		groups := prettify_pat.FindStringSubmatch(match)
		val := groups[2]
		switch groups[1] {
		case "file":
			if val == utils.ConfigFileName {
				val = hyperlink_for_path(filepath.Join(utils.ConfigDir(), val), val)
			}
			return italic_fmt(val)
		case "env", "envvar", "emph":
			return italic_fmt(val)
		case "code":
			return code_fmt(val)
		case "option", "opt":
			return bold_fmt(val)
		case "yellow":
			return yellow_fmt(val)
		case "green":
			return green_fmt(val)
		case "err":
			return err_fmt(val)
		}
		return val
	})
}

func format_with_indent(output io.Writer, text string, indent string, screen_width int) {
	for _, line := range strings.Split(prettify(text), "\n") {
		format_line_with_indent(output, line, indent, screen_width)
	}
}

func full_command_name(cmd *cobra.Command) string {
	var parent_names []string
	cmd.VisitParents(func(p *cobra.Command) {
		parent_names = append([]string{p.Name()}, parent_names...)
	})
	parent_names = append(parent_names, cmd.Name())
	return strings.Join(parent_names, " ")
}

func show_usage(cmd *cobra.Command) error {
	var output strings.Builder
	screen_width := 80
	if cols, _, err := GetTTYSize(); err == nil && cols < 80 {
		screen_width = cols
	}
	use := ""
	if _, rest, found := strings.Cut(cmd.Use, " "); found {
		use = rest
	}
	fmt.Fprintln(&output, title_fmt("Usage")+":", exe_fmt(full_command_name(cmd)), use)
	fmt.Fprintln(&output)
	if len(cmd.Long) > 0 {
		format_with_indent(&output, cmd.Long, "", screen_width)
	} else if len(cmd.Short) > 0 {
		format_with_indent(&output, cmd.Short, "", screen_width)
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintln(&output)
		fmt.Fprintln(&output, title_fmt("Commands")+":")
		for _, child := range cmd.Commands() {
			if child.Hidden {
				continue
			}
			fmt.Fprintln(&output, " ", opt_fmt(child.Name()))
			format_with_indent(&output, child.Short, "    ", screen_width)
		}
		fmt.Fprintln(&output)
		format_with_indent(&output, "Get help for an individual command by running:", "", screen_width)
		fmt.Fprintln(&output, "   ", full_command_name(cmd), italic_fmt("command"), "-h")
	}
	print_flags := func(title string, flag_set *pflag.FlagSet) {
		if !flag_set.HasAvailableFlags() {
			return
		}
		fmt.Fprintln(&output)
		fmt.Fprintln(&output, title_fmt(title)+":")
		flag_set.VisitAll(func(flag *pflag.Flag) {
			if flag.Hidden {
				return
			}
			fmt.Fprint(&output, opt_fmt("  --"+flag.Name))
			if flag.Shorthand != "" {
				fmt.Fprint(&output, ", ", opt_fmt("-"+flag.Shorthand))
			}
			switch flag.Value.Type() {
			case "bool", "count":
			default:
				if flag.DefValue != "" && flag.DefValue != "[]" {
					fmt.Fprintf(&output, " [=%s]", italic_fmt(flag.DefValue))
				}
			}
			fmt.Fprintln(&output)
			msg := flag.Usage
			switch flag.Name {
			case "help":
				msg = "Print this help message"
			case "version":
				msg = "Print the version of " + RootCmd.Name() + ": " + italic_fmt(RootCmd.Version)
			}
			format_with_indent(&output, msg, "    ", screen_width)
			for c := cmd; c != nil; c = c.Parent() {
				if choices := c.Annotations["choices-"+flag.Name]; choices != "" {
					fmt.Fprintln(&output, "    Choices:", strings.Join(strings.Split(choices, "\000"), ", "))
					break
				}
			}
			fmt.Fprintln(&output)
		})
	}
	options_title := cmd.Annotations["options_title"]
	if options_title == "" {
		options_title = "Options"
	}
	print_flags(options_title, cmd.LocalFlags())
	print_flags("Global options", cmd.InheritedFlags())
	fmt.Fprintln(&output, italic_fmt(RootCmd.Name()), opt_fmt(termprobe.VersionString), "created by", title_fmt("Kovid Goyal"))
	_, err := io.WriteString(cmd.OutOrStdout(), output.String())
	return err
}

func CreateCommand(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = make(map[string]string)
	}
	if cmd.Run == nil && cmd.RunE == nil {
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			if len(cmd.Commands()) > 0 {
				if len(args) == 0 {
					return fmt.Errorf("%s. Use %s -h to get a list of available sub-commands", err_fmt("No sub-command specified"), full_command_name(cmd))
				}
				return fmt.Errorf("Not a valid subcommand: %s. Use %s -h to get a list of available sub-commands", err_fmt(args[0]), full_command_name(cmd))
			}
			return nil
		}
	}
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	orig_pre_run := cmd.PersistentPreRunE
	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		err := ValidateChoices(c, args)
		if err != nil || orig_pre_run == nil {
			return err
		}
		return orig_pre_run(c, args)
	}

	cmd.PersistentFlags().SortFlags = false
	cmd.Flags().SortFlags = false
	return cmd
}

func show_help(cmd *cobra.Command, args []string) {
	show_usage(cmd)
}

func Init(root *cobra.Command) {
	vs := termprobe.VersionString
	if rev := termprobe.VCSRevision(); rev != "" {
		vs = vs + " (" + rev + ")"
	}
	stdout_is_terminal = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	color.NoColor = !stdout_is_terminal || os.Getenv("NO_COLOR") != ""
	RootCmd = root
	root.Version = vs
	root.SetUsageFunc(show_usage)
	root.SetHelpFunc(show_help)
	root.SetHelpCommand(&cobra.Command{Hidden: true})
	root.CompletionOptions.DisableDefaultCmd = true
}

// ExitCodeError makes Exec() exit with Code without printing anything
type ExitCodeError struct{ Code int }

func (self *ExitCodeError) Error() string { return fmt.Sprintf("exit code: %d", self.Code) }

// ShowError prints err to w in the style used for all errors
func ShowError(w io.Writer, err error) {
	fmt.Fprintln(w, err_fmt("Error")+":", err)
}

// Exec runs the root command and exits the process with a non-zero code on
// failure
func Exec(root *cobra.Command) {
	if err := root.Execute(); err != nil {
		var ec *ExitCodeError
		if errors.As(err, &ec) {
			os.Exit(ec.Code)
		}
		ShowError(os.Stderr, err)
		os.Exit(1)
	}
}
