package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"librarysim/internal/catalog"
	"librarysim/internal/journal"
	"librarysim/internal/library"
	"librarysim/internal/membership"
	"librarysim/internal/wishlist"
)

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the order and wishlist walkthroughs against a fresh library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := library.NewService(catalog.New(), wishlist.New(), membership.NewRegistry(), journal.NewMemory(), a.logger)
			return runDemo(cmd.Context(), cmd.OutOrStdout(), svc)
		},
	}
}

func runDemo(ctx context.Context, w io.Writer, svc library.Service) error {
	for _, b := range []catalog.Book{
		{Name: "A", ID: 0, Year: 1999},
		{Name: "B", ID: 1, Year: 2002},
		{Name: "C", ID: 2, Year: 2004},
		{Name: "D", ID: 3, Year: 2020},
	} {
		if _, err := svc.AddBook(ctx, b); err != nil {
			return err
		}
	}
	for _, p := range [][2]string{{"student", "AAA"}, {"teacher", "BBB"}, {"librarian", "CCC"}} {
		if _, err := svc.RegisterPatron(ctx, p[0], p[1]); err != nil {
			return err
		}
	}

	fmt.Fprintln(w, "== catalog")
	for _, e := range svc.ShowCatalog(ctx) {
		fmt.Fprintln(w, e.String())
	}

	fmt.Fprintln(w, "== order and collect")
	var summary string
	for i := 0; i < 7; i++ {
		s, err := svc.ShowAnyBook(ctx)
		if err != nil {
			return err
		}
		summary = s
	}
	fmt.Fprintf(w, "seventh browse: %s\n", summary)

	added, err := svc.AddBook(ctx, catalog.Book{Name: "D", ID: 3, Year: 2020})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "add D again: %s\n", added)

	if summary, err = svc.ShowAnyBook(ctx); err != nil {
		return err
	}
	fmt.Fprintf(w, "next browse: %s\n", summary)

	for _, step := range []struct {
		label string
		run   func() (fmt.Stringer, error)
	}{
		{"AAA borrows D", func() (fmt.Stringer, error) { return svc.BorrowBook(ctx, "AAA", 3) }},
		{"AAA borrows D again", func() (fmt.Stringer, error) { return svc.BorrowBook(ctx, "AAA", 3) }},
		{"AAA collects D", func() (fmt.Stringer, error) { return svc.ConfirmCollection(ctx, "AAA", 3) }},
		{"AAA returns D", func() (fmt.Stringer, error) { return svc.ReturnBook(ctx, "AAA", 3) }},
	} {
		res, err := step.run()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %s\n", step.label, res)
	}

	fmt.Fprintln(w, "== wishlist")
	for _, step := range []struct {
		label string
		run   func() (fmt.Stringer, error)
	}{
		{"AAA borrows B", func() (fmt.Stringer, error) { return svc.BorrowBook(ctx, "AAA", 1) }},
		{"BBB borrows B", func() (fmt.Stringer, error) { return svc.BorrowBook(ctx, "BBB", 1) }},
		{"AAA returns B", func() (fmt.Stringer, error) { return svc.ReturnBook(ctx, "AAA", 1) }},
		{"BBB borrows B", func() (fmt.Stringer, error) { return svc.BorrowBook(ctx, "BBB", 1) }},
	} {
		res, err := step.run()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %s\n", step.label, res)
	}

	for _, e := range svc.Wishlists(ctx) {
		for _, msg := range e.Notifications {
			fmt.Fprintln(w, msg)
		}
	}

	fmt.Fprintln(w, "== audit")
	violations := svc.Audit(ctx)
	if len(violations) == 0 {
		fmt.Fprintln(w, "no violations")
		return nil
	}
	for _, v := range violations {
		fmt.Fprintln(w, v.String())
	}
	return fmt.Errorf("audit found %d violations", len(violations))
}
