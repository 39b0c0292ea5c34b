package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"librarysim/internal/clients"
	"librarysim/internal/library"
)

func newRemoteCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Call a running library API",
		Example: `  librarysim remote borrow BBB 1
  librarysim remote wishlist BBB --server http://localhost:8080`,
	}
	cmd.PersistentFlags().StringVarP(&server, "server", "s", "http://localhost:8080", "Base URL of the library API")

	client := func() *clients.LibraryClient {
		return clients.NewLibraryClient(server, &http.Client{Timeout: 10 * time.Second})
	}

	type call func(c *clients.LibraryClient, ctx context.Context, patron string, id int) (library.OutcomeResponse, error)
	circulation := func(use, short string, fn call) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <patron> <book-id>",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("book id must be an integer: %w", err)
				}
				out, err := fn(client(), cmd.Context(), args[0], id)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatOutcome(out))
				return nil
			},
		}
	}

	cmd.AddCommand(
		circulation("borrow", "Order a book, or join its wishlist", (*clients.LibraryClient).Borrow),
		circulation("confirm", "Confirm an ordered book was collected", (*clients.LibraryClient).Confirm),
		circulation("return", "Return a held book", (*clients.LibraryClient).Return),
		&cobra.Command{
			Use:   "register <kind> <name>",
			Short: "Register a student, teacher or librarian",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := client().RegisterPatron(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s, limit %d)\n", p.Name, p.Kind, p.Limit)
				return nil
			},
		},
		&cobra.Command{
			Use:   "next",
			Short: "Show the next book under the catalog cursor",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				book, err := client().Next(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), book)
				return nil
			},
		},
		&cobra.Command{
			Use:   "wishlist <patron>",
			Short: "Print a patron's wishlist messages",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				e, err := client().Wishlist(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				for _, msg := range e.Notifications {
					fmt.Fprintln(cmd.OutOrStdout(), msg)
				}
				return nil
			},
		},
	)

	return cmd
}

func formatOutcome(out library.OutcomeResponse) string {
	if out.Error != "" {
		return fmt.Sprintf("%s: %s (patron %s, book %d)", out.Outcome, out.Error, out.Patron, out.BookID)
	}
	return fmt.Sprintf("%s (patron %s, book %d)", out.Outcome, out.Patron, out.BookID)
}
