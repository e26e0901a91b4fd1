package main

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/cboxdoerfer/fsearch-sub000/internal/coordinator"
	"github.com/cboxdoerfer/fsearch-sub000/internal/fsdb"
	"github.com/cboxdoerfer/fsearch-sub000/internal/indextree"
	"github.com/cboxdoerfer/fsearch-sub000/internal/query"
	"github.com/cboxdoerfer/fsearch-sub000/internal/scanner"
)

var (
	queryMatchCase    bool
	queryRegex        bool
	querySearchInPath bool
	queryFoldersOnly  bool
	queryFilesOnly    bool
	queryMaxResults   int
	queryIncludes     []string
)

// queryCmd is a thin manual-testing surface — supplemented from
// original_source's database_search.c CLI harness, not part of the
// production GUI contract (SPEC_FULL.md §6).
var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Load-or-scan the default database and run one query",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().BoolVar(&queryMatchCase, "match-case", false, "case-sensitive matching")
	queryCmd.Flags().BoolVar(&queryRegex, "regex", false, "enable regex tokens")
	queryCmd.Flags().BoolVar(&querySearchInPath, "path", false, "match against the full path, not just the name")
	queryCmd.Flags().BoolVar(&queryFoldersOnly, "folders", false, "folders only")
	queryCmd.Flags().BoolVar(&queryFilesOnly, "files", false, "files only")
	queryCmd.Flags().IntVar(&queryMaxResults, "max", 100, "maximum results (0 = unlimited)")
	queryCmd.Flags().StringSliceVar(&queryIncludes, "include", nil, "path to index (repeatable); defaults to every mounted partition")
}

func runQuery(cmd *cobra.Command, args []string) error {
	text := args[0]

	db := fsdb.New(queryIncludes, scanner.Policy{})
	if err := db.Load(context.Background(), nil); err != nil {
		return fmt.Errorf("load: %w", err)
	}

	eng := query.New(0)
	co := coordinator.New(db, eng)
	defer func() {
		co.Shutdown()
		co.Join()
	}()

	flags := query.Flags{
		MatchCase:        queryMatchCase,
		AutoMatchCase:    !queryMatchCase,
		EnableRegex:      queryRegex,
		SearchInPath:     querySearchInPath,
		AutoSearchInPath: true,
	}

	var filter *query.Filter
	switch {
	case queryFoldersOnly:
		filter = &query.Filter{Kind: query.FilterFoldersOnly}
	case queryFilesOnly:
		filter = &query.Filter{Kind: query.FilterFilesOnly}
	}

	q, err := query.NewQuery(text, flags, filter, queryMaxResults, true)
	if err != nil {
		return fmt.Errorf("bad query: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	q.OnResult = func(r *query.Result) {
		defer wg.Done()
		printResult(cmd, r)
	}
	q.OnCancelled = func() {
		defer wg.Done()
		cmd.Println(styleMuted.Render("cancelled"))
	}

	co.Submit(q)
	wg.Wait()
	return nil
}

func printResult(cmd *cobra.Command, r *query.Result) {
	buf := new(bytes.Buffer)
	for _, ref := range r.Matches {
		indextree.BuildFullPathInto(ref.Pool, ref.Node, buf)
		cmd.Println(buf.String())
	}
	cmd.Println(styleMuted.Render(fmt.Sprintf(
		"%d folders, %d files", r.NumFolders, r.NumFiles)))
}
