package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/scott-cotton/cli"
)

// MainCommand returns the root bucketdb command. ctx bounds every store
// operation.
func MainCommand(ctx context.Context) *cli.Command {
	cfg := &MainConfig{ctx: ctx}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}

	return cli.NewCommandAt(&cfg.Main, "bucketdb").
		WithSynopsis("bucketdb -db file [-driver bolt|sqlite] [-format json|yaml] command [opts]").
		WithDescription("bucketdb inspects and edits a file-backed document store.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return bucketdbMain(cfg, cc, args)
		}).
		WithSubs(
			BucketsCommand(cfg),
			DumpCommand(cfg),
			ImportCommand(cfg),
			QueryCommand(cfg),
		)
}

func bucketdbMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

func BucketsCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &BucketsConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Buckets, "buckets").
		WithAliases("ls").
		WithSynopsis("buckets").
		WithDescription("list bucket names").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			if _, err := cfg.Buckets.Parse(cc, args); err != nil {
				return err
			}
			store, err := cfg.openStore(cc.Out)
			if err != nil {
				return err
			}
			defer store.Close()
			return listBuckets(cfg.ctx, store, cc.Out)
		})
}

func DumpCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DumpConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Dump, "dump").
		WithAliases("export").
		WithSynopsis("dump [buckets]").
		WithDescription("write a snapshot of the given buckets, or of all of them, to stdout").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			args, err := cfg.Dump.Parse(cc, args)
			if err != nil {
				return err
			}
			store, err := cfg.openStore(cc.Out)
			if err != nil {
				return err
			}
			defer store.Close()
			return store.Export(cfg.ctx, cc.Out, args...)
		})
}

func ImportCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ImportConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Import, "import").
		WithSynopsis("import [-overwrite] [file]").
		WithDescription("import a snapshot from file, or from stdin").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			args, err := cfg.Import.Parse(cc, args)
			if err != nil {
				return err
			}
			if len(args) > 1 {
				return fmt.Errorf("%w: import takes at most one file", cli.ErrUsage)
			}
			in := cc.In
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			store, err := cfg.openStore(cc.Out)
			if err != nil {
				return err
			}
			defer store.Close()
			return store.ImportFrom(cfg.ctx, in, cfg.Overwrite)
		})
}

func QueryCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &QueryConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Query, "query").
		WithAliases("q").
		WithSynopsis("query [-expr expr] [-first] bucket [field:op:value | or:field:op:value]...").
		WithDescription("print the documents of bucket matching every field:op:value condition\n" +
			"and, if any or: condition is given, at least one of them.\n" +
			"op is one of eq, neq, lt, lte, gt, gte. value is read as JSON, or as a\n" +
			"plain string if it is not valid JSON.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			args, err := cfg.Query.Parse(cc, args)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return fmt.Errorf("%w: query requires a bucket", cli.ErrUsage)
			}
			store, err := cfg.openStore(cc.Out)
			if err != nil {
				return err
			}
			defer store.Close()
			return runQuery(cfg.ctx, store, cc.Out, queryArgs{
				bucket: args[0],
				tokens: args[1:],
				expr:   cfg.Expr,
				first:  cfg.First,
			})
		})
}
