package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newInboxCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Message sellers and buyers (requires login)",
	}
	cmd.AddCommand(newInboxListCommand())
	cmd.AddCommand(newInboxReadCommand())
	cmd.AddCommand(newInboxSendCommand())
	cmd.AddCommand(newInboxStartCommand())
	return cmd
}

func newInboxListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List conversations",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, _ []string) error {
			if err := requireLogin(app); err != nil {
				return err
			}
			conversations, err := app.Messaging.Conversations(ctx)
			if err != nil {
				return err
			}
			if len(conversations) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no conversations yet")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tWITH\tUNREAD\tLAST MESSAGE")
			for _, conversation := range conversations {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
					conversation.ID, conversation.PeerName, conversation.UnreadCount, conversation.LastMessage)
			}
			return w.Flush()
		}),
	}
}

func newInboxReadCommand() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "read <conversation-id>",
		Short: "Read a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			if err := requireLogin(app); err != nil {
				return err
			}
			messages, err := app.Messaging.Messages(ctx, args[0], page)
			if err != nil {
				return err
			}
			me := app.Sessions.Current()
			for _, message := range messages.Content {
				who := "them"
				if me != nil && message.SenderID == me.UserID {
					who = "me"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n", message.SentAt.Format("Jan 2 15:04"), who, message.Body)
			}
			return nil
		}),
	}

	cmd.Flags().IntVar(&page, "page", 0, "message page (zero based)")
	return cmd
}

func newInboxSendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "send <conversation-id> <message>",
		Short: "Reply in a conversation",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			if err := requireLogin(app); err != nil {
				return err
			}
			if _, err := app.Messaging.Send(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "sent")
			return nil
		}),
	}
}

func newInboxStartCommand() *cobra.Command {
	var listingID string

	cmd := &cobra.Command{
		Use:   "start <seller-id> <message>",
		Short: "Start a conversation with a seller",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			if err := requireLogin(app); err != nil {
				return err
			}
			conversation, err := app.Messaging.Start(ctx, args[0], listingID, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "conversation %s started with %s\n", conversation.ID, conversation.PeerName)
			return nil
		}),
	}

	cmd.Flags().StringVar(&listingID, "listing", "", "listing the question is about")
	return cmd
}
