package admin

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/bugradar/internal/server/auth"
	"github.com/dmitrijs2005/bugradar/internal/server/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

var secretEnv = config.EnvPrefix + "SECRET_KEY"

// NewRootCommand builds the bugradar-admin command tree. Output goes to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "bugradar-admin",
		Short:         "Moderator tools for a bugradar server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().String("server", defaultServer, "Base URL of the bugradar HTTP API")
	root.PersistentFlags().String("token", "", "Bearer token (defaults to $"+TokenEnv+", then a prompt)")
	root.PersistentFlags().Duration("timeout", 30*time.Second, "Request timeout")

	root.AddCommand(
		tokenCmd(),
		checkCmd(),
		banCmd(),
		userFlagCmd("unban", "Lift a ban", (*Client).Unban),
		userFlagCmd("promote", "Grant moderator rights", (*Client).Promote),
		userFlagCmd("demote", "Revoke moderator rights", (*Client).Demote),
		recalcCmd(),
		recalcAllCmd(),
		uploadCmd(),
	)
	return root
}

// clientFor resolves the server and token flags into a client plus a
// context bounded by --timeout.
func clientFor(cmd *cobra.Command) (*Client, context.Context, context.CancelFunc, error) {
	server, _ := cmd.Flags().GetString("server")
	flagToken, _ := cmd.Flags().GetString("token")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	token, err := ResolveToken(flagToken, os.LookupEnv, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reading token: %w", err)
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	return NewClient(server, token), ctx, cancel, nil
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <uid>",
		Short: "Mint a bearer token for a user",
		Long: `Sign a bearer token for uid with the server secret.

The secret comes from --secret or $BUGRADAR_SECRET_KEY and must match
the server's signing secret. Intended for local development and operations.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, _ := cmd.Flags().GetString("secret")
			if secret == "" {
				secret = os.Getenv(secretEnv)
			}
			if secret == "" {
				return fmt.Errorf("no secret: pass --secret or set %s", secretEnv)
			}
			validity, _ := cmd.Flags().GetDuration("validity")
			t, err := auth.GenerateToken(args[0], []byte(secret), validity)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	}
	cmd.Flags().String("secret", "", "Signing secret")
	cmd.Flags().Duration("validity", time.Hour, "Token lifetime")
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether the token belongs to a moderator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := clientFor(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			ok, err := c.Check(ctx)
			if err != nil {
				return err
			}
			if ok {
				green := color.New(color.FgGreen).SprintFunc()
				fmt.Fprintf(cmd.OutOrStdout(), "%s moderator\n", green("✓"))
			} else {
				yellow := color.New(color.FgYellow).SprintFunc()
				fmt.Fprintf(cmd.OutOrStdout(), "%s not a moderator\n", yellow("ℹ"))
			}
			return nil
		},
	}
}

func banCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ban <uid>",
		Short: "Ban a user",
		Long: `Ban a user. Banned users cannot post, comment or vote.

The user is notified by email when the server has mail enabled.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reason, _ := cmd.Flags().GetString("reason")
			c, ctx, cancel, err := clientFor(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			res, err := c.Ban(ctx, args[0], reason)
			if err != nil {
				return err
			}
			printUserResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().String("reason", "", "Reason shown to the user")
	return cmd
}

func userFlagCmd(name, short string, call func(*Client, context.Context, string) (*UserResult, error)) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <uid>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := clientFor(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			res, err := call(c, ctx, args[0])
			if err != nil {
				return err
			}
			printUserResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func recalcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recalc <uid>",
		Short: "Recompute one user's score from their votes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := clientFor(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			res, err := c.Recalculate(ctx, args[0])
			if err != nil {
				return err
			}
			cyan := color.New(color.FgCyan).SprintFunc()
			fmt.Fprintf(cmd.OutOrStdout(), "%s score=%s\n", res.UserID, cyan(res.Score.String()))
			return nil
		},
	}
}

func recalcAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recalc-all",
		Short: "Recompute every user's score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := clientFor(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			res, err := c.RecalculateAll(ctx)
			if err != nil {
				return err
			}
			green := color.New(color.FgGreen).SprintFunc()
			red := color.New(color.FgRed).SprintFunc()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d users recalculated", green("✓"), res.Users)
			if res.Failed > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), ", %s", red(fmt.Sprintf("%d failed", res.Failed)))
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func printUserResult(w io.Writer, res *UserResult) {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(w, "%s %s\n", green("✓"), res.Message)
	fmt.Fprintf(w, "  uid=%s username=%s banned=%t moderator=%t\n",
		res.User.ID, res.User.Username, res.User.IsBanned, res.User.IsModerator)
}

func uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a screenshot and print its image URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := clientFor(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			up, err := c.UploadImage(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), up.ImageURL)
			return nil
		},
	}
}
