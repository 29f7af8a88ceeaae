package decree

import (
	"sort"
	"strings"

	"github.com/reeflective/decree/internal/display"
)

const shortHelpLimit = 45

// renderUsage renders the usage line of the context's command.
func renderUsage(ctx *Context) string {
	formatter := display.NewFormatter()
	writeUsage(ctx, formatter)

	return strings.TrimRight(formatter.String(), "\n")
}

// renderHelp renders the full help page of the context's command.
func renderHelp(ctx *Context) string {
	cmd := ctx.command.meta()
	formatter := display.NewFormatter()

	writeUsage(ctx, formatter)
	writeHelpText(cmd, formatter)
	writeOptions(ctx, formatter)

	if group, ok := ctx.command.(*Group); ok {
		writeCommands(group, formatter)
	}

	writeEpilog(cmd, formatter)

	return strings.TrimRight(formatter.String(), "\n") + "\n"
}

func writeUsage(ctx *Context, formatter *display.Formatter) {
	formatter.WriteUsage(ctx.CommandPath(), strings.Join(usagePieces(ctx), " "))
}

// usagePieces collects the argument placeholders of the usage line:
// the options metavar, the positional metavars in declaration order,
// and the subcommand placeholder for groups.
func usagePieces(ctx *Context) []string {
	cmd := ctx.command.meta()

	var pieces []string

	metavar := cmd.OptionsMetavar
	if metavar == "" {
		metavar = DefaultOptionsMetavar
	}

	if metavar != "-" {
		pieces = append(pieces, metavar)
	}

	for _, param := range cmd.params {
		if param.positional {
			pieces = append(pieces, param.UsageMetavar())
		}
	}

	if group, ok := ctx.command.(*Group); ok {
		sub := group.SubcommandMetavar
		if sub == "" {
			sub = DefaultSubcommandMetavar
		}

		pieces = append(pieces, sub)
	}

	return pieces
}

func writeHelpText(cmd *Command, formatter *display.Formatter) {
	text := strings.TrimSpace(cmd.Help)

	if cmd.Deprecated {
		text = strings.TrimSpace("(Deprecated) " + text)
	}

	if text == "" {
		return
	}

	formatter.WriteParagraph()
	formatter.Indentation(func() {
		formatter.WriteText(text)
	})
}

func writeOptions(ctx *Context, formatter *display.Formatter) {
	var rows [][2]string

	for _, param := range ctx.command.meta().orderedParams() {
		if param.hidden || param.positional {
			continue
		}

		rows = append(rows, optionRecord(ctx, param))
	}

	if len(rows) == 0 {
		return
	}

	formatter.Section("Options", func() {
		formatter.WriteDefinitions(rows)
	})
}

// optionRecord builds the two help columns for one option: the flag
// spellings with their metavar, and the description with its bracketed
// extras.
func optionRecord(ctx *Context, param *Parameter) [2]string {
	term := flagSpellings(param.flags, param)
	if len(param.secondary) > 0 {
		term += " / " + flagSpellings(param.secondary, param)
	}

	var extras []string

	if param.showConfig {
		if paths := param.configPaths(ctx); len(paths) > 0 {
			extras = append(extras, "config path: "+strings.Join(paths, ", "))
		}
	}

	if param.showEnv {
		if vars := param.envNames(ctx); len(vars) > 0 {
			extras = append(extras, "env var: "+strings.Join(vars, ", "))
		}
	}

	if text := defaultText(param); text != "" {
		extras = append(extras, "default: "+text)
	}

	if param.IsRequired() {
		extras = append(extras, "required")
	}

	help := param.help
	if len(extras) > 0 {
		suffix := "[" + strings.Join(extras, "; ") + "]"

		if help == "" {
			help = suffix
		} else {
			help += "  " + suffix
		}
	}

	return [2]string{term, help}
}

func flagSpellings(flags []string, param *Parameter) string {
	sorted := append([]string(nil), flags...)
	sort.Strings(sorted)

	term := strings.Join(sorted, ", ")

	if metavar := param.UsageMetavar(); metavar != "" {
		term += " " + metavar
	}

	return term
}

// defaultText renders the displayed default: the explicit override
// text, the formatted declared default, or "(dynamic)" for factories.
func defaultText(param *Parameter) string {
	if param.showDefault == "" {
		return ""
	}

	if param.showDefault != "\x00" {
		return "(" + param.showDefault + ")"
	}

	if param.hasDef && param.def != nil {
		return param.typ.Format(param.def)
	}

	if param.defFunc != nil {
		return "(dynamic)"
	}

	return ""
}

func writeCommands(group *Group, formatter *display.Formatter) {
	var rows [][2]string

	for _, name := range group.order {
		cmd := group.subcommands[name].meta()
		if cmd.Hidden {
			continue
		}

		rows = append(rows, [2]string{name, cmd.shortHelpText(shortHelpLimit)})
	}

	if len(rows) == 0 {
		return
	}

	formatter.Section("Commands", func() {
		formatter.WriteDefinitions(rows)
	})
}

func writeEpilog(cmd *Command, formatter *display.Formatter) {
	if cmd.Epilog == "" {
		return
	}

	formatter.WriteParagraph()
	formatter.Indentation(func() {
		formatter.WriteText(strings.TrimSpace(cmd.Epilog))
	})
}

// shortenHelp derives the one-line description shown in listings from
// the long help text.
func shortenHelp(help string, limit int) string {
	return display.ShortHelp(help, limit)
}
