package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"scoundrel/internal/config"
	"scoundrel/internal/ops"
	"scoundrel/internal/save"
	"scoundrel/internal/stores"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "export":
		err = cmdExport(os.Args[2:])
	case "import":
		err = cmdImport(os.Args[2:])
	case "copy":
		err = cmdCopy(os.Args[2:])
	case "migrate":
		err = cmdMigrate(os.Args[2:])
	default:
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func openStores(backend, dataDir string) (*stores.Stores, error) {
	return stores.Open(config.ServerConfig{SaveBackend: backend, DataDir: dataDir}, zerolog.Nop())
}

func cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	backend := fs.String("backend", config.BackendFile, "save backend: file or sqlite")
	dataDir := fs.String("data-dir", "data", "path to data directory")
	out := fs.String("out", "", "output archive path (.tar.gz)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		ts := time.Now().UTC().Format("20060102T150405Z")
		*out = filepath.Join("backups", "scoundrel-"+ts+".tar.gz")
	}

	st, err := openStores(*backend, *dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	n, err := ops.Export(context.Background(), st.Saves, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s (%d saves)\n", *out, n)
	return nil
}

func cmdImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	backend := fs.String("backend", config.BackendFile, "save backend: file or sqlite")
	dataDir := fs.String("data-dir", "data", "path to data directory")
	archive := fs.String("archive", "", "input archive (.tar.gz)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *archive == "" {
		return fmt.Errorf("archive is required")
	}

	st, err := openStores(*backend, *dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	f, err := os.Open(*archive)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := ops.Import(context.Background(), f, st.Saves)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d saves\n", res.Imported)
	for _, name := range res.Skipped {
		fmt.Println("skipped:", name)
	}
	return nil
}

func cmdCopy(args []string) error {
	fs := flag.NewFlagSet("copy", flag.ContinueOnError)
	from := fs.String("from", config.BackendFile, "source backend")
	to := fs.String("to", config.BackendSQLite, "target backend")
	dataDir := fs.String("data-dir", "data", "path to data directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	src, err := openStores(*from, *dataDir)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := openStores(*to, *dataDir)
	if err != nil {
		return err
	}
	defer dst.Close()

	n, err := ops.Copy(context.Background(), src.Saves, dst.Saves)
	if err != nil {
		return err
	}
	fmt.Printf("copied %d saves from %s to %s\n", n, *from, *to)
	return nil
}

func cmdMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to data directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	action := fs.Arg(0)
	if action == "" {
		action = "version"
	}

	mm, err := save.NewMigrationManager(filepath.Join(*dataDir, stores.DBFile))
	if err != nil {
		return err
	}
	defer mm.Close()

	switch action {
	case "up":
		err = mm.Up()
	case "down":
		err = mm.Down()
	case "version":
	default:
		return fmt.Errorf("unknown migrate action %q", action)
	}
	if err != nil {
		return err
	}
	v, dirty, err := mm.Version()
	if err != nil {
		return err
	}
	fmt.Printf("version %d dirty=%v\n", v, dirty)
	return nil
}

func printUsage() {
	fmt.Println("usage:")
	fmt.Println("  scoundrel-ops export  --backend file --data-dir data --out backups/saves.tar.gz")
	fmt.Println("  scoundrel-ops import  --backend sqlite --data-dir data --archive backups/saves.tar.gz")
	fmt.Println("  scoundrel-ops copy    --from file --to sqlite --data-dir data")
	fmt.Println("  scoundrel-ops migrate --data-dir data [up|down|version]")
}
