package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/illarion/locknote/cmd"
	"github.com/illarion/locknote/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit(ctx, os.Args[2:])
	case "new":
		runNew(ctx, os.Args[2:])
	case "show":
		runShow(ctx, os.Args[2:])
	case "edit":
		runEdit(ctx, os.Args[2:])
	case "rm":
		runRm(ctx, os.Args[2:])
	case "ls":
		runLs(ctx, os.Args[2:])
	case "status":
		runStatus(ctx, os.Args[2:])
	case "recover":
		runRecover(ctx, os.Args[2:])
	case "passwd":
		runPasswd(ctx, os.Args[2:])
	case "diff":
		runDiff(ctx, os.Args[2:])
	case "search":
		runSearch(ctx, os.Args[2:])
	case "history":
		runHistory(ctx, os.Args[2:])
	case "compact":
		runCompact(ctx, os.Args[2:])
	case "keyring":
		runKeyring(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// parse parses args with the shared flags bound and returns the command
// environment.
func parse(ctx context.Context, fs *flag.FlagSet, args []string) (context.Context, *cmd.Env) {
	flags := config.Bind(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return cmd.Setup(ctx, flags)
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func requireArgs(fs *flag.FlagSet, n int, usage string) {
	if fs.NArg() < n {
		fmt.Fprintf(os.Stderr, "Usage: %s\n", usage)
		os.Exit(1)
	}
}

func runInit(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	ctx, env := parse(ctx, fs, args)

	cmd.Init(ctx, env)
}

func runNew(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("new", flag.ExitOnError)
	title := fs.String("title", "", "Note title")
	tags := fs.String("tags", "", "Comma-separated tags")
	file := fs.String("file", "", "Read content from file ('-' for stdin)")
	ctx, env := parse(ctx, fs, args)

	cmd.New(ctx, env, *title, cmd.SplitTags(*tags, isSet(fs, "tags")), *file)
}

func runShow(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	clip := fs.Bool("clip", false, "Copy the note to the clipboard instead of printing it")
	ctx, env := parse(ctx, fs, args)
	requireArgs(fs, 1, "locknote show [-clip] <note>")

	cmd.Show(ctx, env, fs.Arg(0), *clip)
}

func runEdit(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	title := fs.String("title", "", "New title")
	tags := fs.String("tags", "", "Replace tags (comma-separated)")
	file := fs.String("file", "", "Read new content from file ('-' for stdin)")
	ctx, env := parse(ctx, fs, args)
	requireArgs(fs, 1, "locknote edit [-title t] [-tags a,b] [-file f] <note>")

	cmd.Edit(ctx, env, fs.Arg(0), *file, *title, cmd.SplitTags(*tags, isSet(fs, "tags")))
}

func runRm(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	ctx, env := parse(ctx, fs, args)

	cmd.Remove(ctx, env, fs.Args())
}

func runLs(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	tag := fs.String("tag", "", "Only list notes with this tag")
	ctx, env := parse(ctx, fs, args)

	cmd.Ls(ctx, env, *tag)
}

func runStatus(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	ctx, env := parse(ctx, fs, args)

	cmd.Status(ctx, env)
}

func runRecover(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("recover", flag.ExitOnError)
	show := fs.Bool("print", false, "Print the recovered note")
	ctx, env := parse(ctx, fs, args)
	requireArgs(fs, 1, "locknote recover [-print] <note>")

	cmd.Recover(ctx, env, fs.Arg(0), *show)
}

func runPasswd(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("passwd", flag.ExitOnError)
	rekey := fs.Bool("rekey", false, "Re-encrypt every note with the new password")
	ctx, env := parse(ctx, fs, args)

	cmd.Passwd(ctx, env, *rekey)
}

func runDiff(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	ctx, env := parse(ctx, fs, args)
	requireArgs(fs, 2, "locknote diff <note> <file>")

	cmd.Diff(ctx, env, fs.Arg(0), fs.Arg(1))
}

func runSearch(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	full := fs.Bool("full", false, "Show every match with its position and context")
	ctx, env := parse(ctx, fs, args)
	requireArgs(fs, 1, "locknote search [-full] <query>")

	cmd.Search(ctx, env, strings.Join(fs.Args(), " "), *full)
}

func runHistory(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("n", 20, "Number of entries to show (0 for all)")
	ctx, env := parse(ctx, fs, args)

	cmd.History(ctx, env, *limit)
}

func runCompact(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("compact", flag.ExitOnError)
	ctx, env := parse(ctx, fs, args)

	cmd.Compact(ctx, env)
}

func runKeyring(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: locknote keyring <save|delete|status>")
		os.Exit(1)
	}

	fs := flag.NewFlagSet("keyring "+args[0], flag.ExitOnError)
	ctx, env := parse(ctx, fs, args[1:])

	switch args[0] {
	case "save":
		cmd.KeyringSave(ctx, env)
	case "delete":
		cmd.KeyringDelete(ctx, env)
	case "status":
		cmd.KeyringStatus(ctx, env)
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring command: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "Usage: locknote keyring <save|delete|status>")
		os.Exit(1)
	}
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: locknote completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("locknote - encrypted notes on the command line")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  locknote <command> [flags] [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init        Create a new notebook")
	fmt.Println("  new         Create a note from a file, stdin or $EDITOR")
	fmt.Println("  show        Decrypt and print a note")
	fmt.Println("  edit        Change a note's content, title or tags")
	fmt.Println("  rm          Delete notes")
	fmt.Println("  ls          List notes (no password needed)")
	fmt.Println("  status      Show notebook status")
	fmt.Println("  recover     Re-encrypt a note sealed under an old password")
	fmt.Println("  passwd      Change the notebook password")
	fmt.Println("  diff        Compare a note with a local file")
	fmt.Println("  search      Search note titles, tags and content")
	fmt.Println("  history     Show the access history")
	fmt.Println("  compact     Compact the bolt database")
	fmt.Println("  keyring     Manage the password in the OS keyring")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Flags accepted by every command:")
	fmt.Println("  -dir <path>        Data directory (env LOCKNOTE_DIR, default ./notes)")
	fmt.Println("  -backend <name>    file or bolt (env LOCKNOTE_BACKEND, default file)")
	fmt.Println("  -log-level <lvl>   Diagnostics level (env LOCKNOTE_LOG_LEVEL, default warn)")
	fmt.Println("  -log-json          JSON diagnostics (env LOCKNOTE_LOG_JSON)")
	fmt.Println()
	fmt.Println("The password is read from LOCKNOTE_PASSWORD, the OS keyring, or a prompt.")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  locknote init                          # Create new notebook")
	fmt.Println("  echo 'milk' | locknote new -title Shop # Create a note from stdin")
	fmt.Println("  locknote show 0b7c41f2                 # Print a note by ID prefix")
	fmt.Println("  locknote passwd -rekey                 # Change password, re-encrypt all")
	fmt.Println()
	fmt.Println("Use 'locknote help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "init":
		fmt.Println("locknote init")
		fmt.Println()
		fmt.Println("Creates a new notebook in the data directory.")
		fmt.Println("Prompts for a password of at least 6 characters.")
		fmt.Println("Only a bcrypt hash of it is stored - you must remember it.")
	case "new":
		fmt.Println("locknote new [-title t] [-tags a,b] [-file f]")
		fmt.Println()
		fmt.Println("Creates a note. Content comes from -file, piped stdin, or $EDITOR.")
		fmt.Println("Every note is encrypted on its own with a fresh salt and nonce.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  locknote new -title Diary")
		fmt.Println("  locknote new -title Keys -tags work,infra -file keys.txt")
	case "show":
		fmt.Println("locknote show [-clip] <note>")
		fmt.Println()
		fmt.Println("Decrypts a note and prints it. <note> is an ID or unique ID prefix.")
		fmt.Println("With -clip the note is copied to the system clipboard instead.")
		fmt.Println("If the note was sealed under an older password, use 'locknote recover'.")
	case "edit":
		fmt.Println("locknote edit [-title t] [-tags a,b] [-file f] <note>")
		fmt.Println()
		fmt.Println("Opens the note in $EDITOR, or replaces its content from -file or stdin.")
		fmt.Println("With only -title/-tags the content is left untouched.")
	case "rm":
		fmt.Println("locknote rm <note> [note...]")
		fmt.Println()
		fmt.Println("Deletes notes and their index entries.")
	case "ls":
		fmt.Println("locknote ls [-tag t]")
		fmt.Println()
		fmt.Println("Lists notes from the plaintext index, newest first.")
		fmt.Println("Does not require a password.")
	case "status":
		fmt.Println("locknote status")
		fmt.Println()
		fmt.Println("Shows the notebook location, counts, keyring state, and records")
		fmt.Println("that are out of sync with the index. Does not require a password.")
	case "recover":
		fmt.Println("locknote recover [-print] <note>")
		fmt.Println()
		fmt.Println("Opens a note with an old password and re-encrypts it under the")
		fmt.Println("current one. Asks for the current password, then the old one.")
	case "passwd":
		fmt.Println("locknote passwd [-rekey]")
		fmt.Println()
		fmt.Println("Changes the notebook password.")
		fmt.Println("Without -rekey, existing notes keep their old password until recovered.")
		fmt.Println("With -rekey, every note readable with the current password is")
		fmt.Println("re-encrypted; notes sealed under older passwords are listed.")
	case "diff":
		fmt.Println("locknote diff <note> <file>")
		fmt.Println()
		fmt.Println("Shows a unified diff between the stored note and a local file.")
	case "search":
		fmt.Println("locknote search [-full] <query>")
		fmt.Println()
		fmt.Println("Decrypts every note and lists those whose title, tags or content")
		fmt.Println("contain <query>, ignoring case. With -full each match is shown with")
		fmt.Println("its position and up to 50 characters of context on each side.")
		fmt.Println("Notes sealed under an older password are listed as stale.")
	case "history":
		fmt.Println("locknote history [-n 20]")
		fmt.Println()
		fmt.Println("Shows the newest access history entries (up to 100 are kept).")
		fmt.Println("Does not require a password.")
	case "compact":
		fmt.Println("locknote compact")
		fmt.Println()
		fmt.Println("Compacts the bolt database to reclaim unused disk space.")
		fmt.Println("This is done automatically after 'rm' and 'passwd -rekey'.")
	case "keyring":
		fmt.Println("locknote keyring <save|delete|status>")
		fmt.Println()
		fmt.Println("Stores, removes or checks the password in the OS keyring.")
	case "completion":
		fmt.Println("locknote completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(locknote completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(locknote completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  locknote completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
