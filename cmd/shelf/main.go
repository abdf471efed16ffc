// Command shelf opens an inventory directory and lists, adds or deletes
// records, or shows and purges their archived versions.
//
//	shelf [flags] [config.toml]
//
// The optional argument names a TOML file with a datapath key. Without it,
// or when it cannot be read, the default directory $HOME/Antiquar is used.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/jpl-au/shelf"
	"github.com/rs/zerolog"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("shelf", flag.ContinueOnError)
	flags.SetOutput(stderr)
	asJSON := flags.Bool("json", false, "list records as JSON")
	add := flags.Bool("add", false, "read a TOML record from stdin and store it as a new record")
	del := flags.String("delete", "", "delete the record with this id")
	history := flags.String("history", "", "print archived versions of this id")
	purge := flags.Bool("purge", false, "remove every archived version")
	verbose := flags.Bool("v", false, "log debug details")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: shelf [flags] [config.toml]")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() > 1 {
		flags.Usage()
		return 2
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: true, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()

	st := loadSettings(flags.Arg(0), log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := shelf.Open(ctx, st.DataPath, st.storeConfig(&log))
	if err != nil {
		log.Error().Err(err).Str("datapath", st.DataPath).Msg("cannot open data directory")
		return 1
	}
	defer store.Close()

	switch {
	case *add:
		err = addRecord(store, stdin, stdout)
	case *del != "":
		err = deleteRecord(store, *del, stdout)
	case *history != "":
		err = printHistory(store, *history, stdout)
	case *purge:
		err = store.Purge()
	case *asJSON:
		err = store.WriteJSON(stdout)
	default:
		err = printRecords(store, stdout)
	}
	if err != nil {
		log.Error().Err(err).Msg("command failed")
		return 1
	}
	return 0
}

// addRecord stores stdin as a new record. The draft is discarded again if
// the input is not a valid record.
func addRecord(store *shelf.Store, stdin io.Reader, stdout io.Writer) error {
	data, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	outcome, book, err := shelf.Decode(data)
	if outcome != shelf.OutcomeValid {
		if err == nil {
			err = fmt.Errorf("%w: input is empty", shelf.ErrInvalidRecord)
		}
		return err
	}

	draft, err := store.Create()
	if err != nil {
		return err
	}
	if err := store.Save(draft.ID, book); err != nil {
		if _, derr := store.Discard(draft.ID); derr != nil {
			return errors.Join(err, fmt.Errorf("discard draft %s: %w", draft.ID, derr))
		}
		return err
	}
	fmt.Fprintln(stdout, draft.ID)
	return nil
}

func deleteRecord(store *shelf.Store, arg string, stdout io.Writer) error {
	id, err := shelf.ParseID(arg)
	if err != nil {
		return err
	}
	if err := store.Delete(id); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "deleted %s\n", id)
	return nil
}

func printHistory(store *shelf.Store, arg string, stdout io.Writer) error {
	id, err := shelf.ParseID(arg)
	if err != nil {
		return err
	}
	versions, err := store.History(id)
	if err != nil {
		return err
	}
	for _, v := range versions {
		fmt.Fprintf(stdout, "# %s\n%s\n", time.UnixMilli(v.TS).Format(time.RFC3339), v.Data)
	}
	return nil
}

func printRecords(store *shelf.Store, stdout io.Writer) error {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tPRICE")
	for _, e := range store.Records() {
		if e.Book == nil {
			fmt.Fprintf(tw, "%s\t<%s: %s>\t\t\n", e.ID, e.Outcome, e.Problem)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", e.ID, e.Book.Title, e.Book.Author, e.Book.Price)
	}
	if n := len(store.Issues()); n > 0 {
		fmt.Fprintf(tw, "\n%d record(s) need attention, see log\n", n)
	}
	return tw.Flush()
}
