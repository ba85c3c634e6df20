package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/backend/bolt"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/backend/sqlite"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/datastore"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/deserializer"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/serializer"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

// MainConfig holds the options shared by every subcommand.
type MainConfig struct {
	DB     string `cli:"name=db desc='database file'"`
	Driver string `cli:"name=driver desc='storage driver: bolt or sqlite'"`
	Format string `cli:"name=format desc='snapshot format: json or yaml'"`

	Main *cli.Command

	ctx context.Context
}

type ImportConfig struct {
	*MainConfig
	Overwrite bool `cli:"name=overwrite desc='replace buckets instead of appending'"`

	Import *cli.Command
}

type QueryConfig struct {
	*MainConfig
	Expr  string `cli:"name=expr desc='boolean expression documents must satisfy'"`
	First bool   `cli:"name=first desc='print only the first match'"`

	Query *cli.Command
}

type BucketsConfig struct {
	*MainConfig

	Buckets *cli.Command
}

type DumpConfig struct {
	*MainConfig

	Dump *cli.Command
}

func (cfg *MainConfig) openBackend() (domain.Backend, error) {
	if cfg.DB == "" {
		return nil, fmt.Errorf("%w: -db is required", cli.ErrUsage)
	}
	switch cfg.Driver {
	case "", "bolt":
		return bolt.Open(cfg.DB)
	case "sqlite":
		return sqlite.Open(cfg.DB)
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", cli.ErrUsage, cfg.Driver)
	}
}

// openStore opens the store named by -db. Output written to w is indented
// when w is a terminal.
func (cfg *MainConfig) openStore(w io.Writer) (*datastore.Datastore, error) {
	format, err := serializer.ParseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	b, err := cfg.openBackend()
	if err != nil {
		return nil, err
	}

	serOpts := []serializer.Option{serializer.WithFormat(format)}
	if isTerminal(w) {
		serOpts = append(serOpts, serializer.WithIndent("  "))
	}
	return datastore.NewDatastore(
		datastore.WithBackend(b),
		datastore.WithSerializer(serializer.NewSerializer(serOpts...)),
		datastore.WithDeserializer(deserializer.NewDeserializer(deserializer.WithFormat(format))),
	), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
