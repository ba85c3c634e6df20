package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"

	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/data"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/datastore"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/query"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

var heading = color.New(color.FgCyan, color.Bold)

var operators = map[string]domain.Operator{
	"eq":  domain.Eq,
	"neq": domain.Neq,
	"lt":  domain.Lt,
	"lte": domain.Lte,
	"gt":  domain.Gt,
	"gte": domain.Gte,
}

// parseToken reads a "field:op:value" condition. An "or:" prefix marks it as
// part of the OR group.
func parseToken(tok string) (p domain.Predicate, or bool, err error) {
	if rest, ok := strings.CutPrefix(tok, "or:"); ok {
		tok, or = rest, true
	}
	parts := strings.SplitN(tok, ":", 3)
	if len(parts) != 3 || parts[0] == "" {
		return p, false, fmt.Errorf("%w: condition %q is not field:op:value", cli.ErrUsage, tok)
	}
	op, ok := operators[parts[1]]
	if !ok {
		return p, false, fmt.Errorf("%w: unknown operator %q", cli.ErrUsage, parts[1])
	}
	return domain.Predicate{Field: parts[0], Operator: op, Value: parseValue(parts[2])}, or, nil
}

// parseValue decodes s as JSON, falling back to the raw string.
func parseValue(s string) any {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return s
	}
	norm, err := data.Normalize(v)
	if err != nil {
		return s
	}
	return norm
}

type queryArgs struct {
	bucket string
	tokens []string
	expr   string
	first  bool
}

func buildQuery(store *datastore.Datastore, args queryArgs) (*query.Query, error) {
	q := store.NewQuery(args.bucket)
	var or []domain.Predicate
	for _, tok := range args.tokens {
		p, isOr, err := parseToken(tok)
		if err != nil {
			return nil, err
		}
		if isOr {
			or = append(or, p)
			continue
		}
		q.Where(p)
	}
	q.OrGroup(or...)

	if args.expr != "" {
		fn, err := query.ExprFunc(args.expr)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		q.WhereFunc(fn)
	}
	return q, nil
}

func runQuery(ctx context.Context, store *datastore.Datastore, w io.Writer, args queryArgs) error {
	q, err := buildQuery(store, args)
	if err != nil {
		return err
	}
	docs, err := q.Execute(ctx)
	if err != nil {
		return err
	}
	if args.first && len(docs) > 1 {
		docs = docs[:1]
	}
	if isTerminal(w) {
		heading.Fprintf(w, "%s: %d document(s)\n", args.bucket, len(docs))
	}

	snap := domain.Snapshot{args.bucket: docs}
	return writeSnapshot(ctx, store, w, snap)
}

func writeSnapshot(ctx context.Context, store *datastore.Datastore, w io.Writer, snap domain.Snapshot) error {
	b, err := store.Serializer().Serialize(ctx, snap)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

func listBuckets(ctx context.Context, store *datastore.Datastore, w io.Writer) error {
	names, err := store.ListBuckets(ctx)
	if err != nil {
		return err
	}
	if isTerminal(w) {
		heading.Fprintf(w, "%d bucket(s)\n", len(names))
	}
	for _, name := range names {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}
