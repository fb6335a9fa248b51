package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/five82/homedash/internal/app"
	"github.com/five82/homedash/internal/bulk"
	"github.com/five82/homedash/internal/config"
	"github.com/five82/homedash/internal/homeapi"
	"github.com/five82/homedash/internal/logtail"
	"github.com/five82/homedash/internal/session"
	"github.com/five82/homedash/internal/toggle"
)

func newLoginCommand(c *cli) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token = strings.TrimSpace(token)
			if token == "" {
				return errors.New("--token is required")
			}
			sess := loadSession(cmd, c.sessionPath)
			sess.SetToken(token)
			if err := sess.Save(); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged in")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "bearer token issued by the backend")
	return cmd
}

func newLogoutCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token and selected device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess := loadSession(cmd, c.sessionPath)
			sess.ClearCredentials()
			if err := sess.Save(); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newLangCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "lang <code>",
		Short: "Set the interface language (en, ms, zh)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := loadSession(cmd, c.sessionPath)
			if err := sess.SetLanguage(args[0]); err != nil {
				return err
			}
			if err := sess.Save(); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "language set to %s\n", sess.Language())
			return nil
		},
	}
}

func newDevicesCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "devices <room>",
		Short: "List the devices of a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Setup(c.options())
			if err != nil {
				return err
			}
			defer env.Close()

			devices, err := env.Client.DevicesInRoom(cmd.Context(), args[0])
			if err != nil {
				return sessionAware(env, err)
			}
			selected := env.Session.SelectedDevice()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTATE\t")
			for _, d := range devices {
				mark := ""
				if d.Name == selected {
					mark = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.Name, homeapi.FormatPower(d.On()), mark)
			}
			return w.Flush()
		},
	}
}

func newToggleCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <room> <device-id>",
		Short: "Flip a device on or off",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Setup(c.options())
			if err != nil {
				return err
			}
			defer env.Close()

			room, id := args[0], args[1]
			backend := toggle.RoomBackend{Service: env.Client, Room: room}
			states, err := backend.FetchStates(cmd.Context())
			if err != nil {
				return sessionAware(env, err)
			}
			if _, ok := states[id]; !ok {
				return fmt.Errorf("device %q not found in %s", id, room)
			}

			ctl := toggle.New(env.Policy())
			ctl.Replace(states)
			runner := &toggle.Runner{
				Controller: ctl,
				Backend:    backend,
				Logger:     env.Logger.Named("toggle").With(zap.String("room", room)),
			}
			res, err := runner.Toggle(cmd.Context(), id)
			if err != nil {
				return err
			}
			switch res.Outcome {
			case toggle.OutcomeSessionExpired:
				return sessionAware(env, res.Err)
			case toggle.OutcomeReverted:
				return fmt.Errorf("toggle %s: %s", id, homeapi.Message(res.Err))
			case toggle.OutcomeStale:
				return cmd.Context().Err()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", id, homeapi.FormatPower(ctl.State(id)))
			if res.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", res.Err)
			}
			return nil
		},
	}
}

func newAddUserCommand(c *cli) *cobra.Command {
	var users []string
	var limit int
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Register one or more users",
		Example: "  homedash adduser --user alice:alice@example.com:secret \\\n" +
			"    --user bob:bob@example.com:hunter2",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form, err := formFromUsers(users)
			if err != nil {
				return err
			}
			env, err := app.Setup(c.options())
			if err != nil {
				return err
			}
			defer env.Close()

			submitter := bulk.Submitter{Creator: env.Client, Limit: limit, Logger: env.Logger.Named("bulk")}
			report, err := submitter.Submit(cmd.Context(), form)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, res := range report.Results {
				status := "ok"
				if res.Err != nil {
					status = "failed"
				}
				fmt.Fprintf(out, "row %d: %s: %s\n", res.Row+1, status, report.Alerts[i])
			}
			if report.SessionExpired {
				for _, res := range report.Results {
					if homeapi.IsSessionExpired(res.Err) {
						return sessionAware(env, res.Err)
					}
				}
			}
			if n := report.Failed(); n > 0 {
				return fmt.Errorf("%d of %d users failed", n, report.Issued())
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&users, "user", nil, "user as name:email:password (repeatable)")
	cmd.Flags().IntVar(&limit, "parallel", 4, "maximum concurrent requests")
	return cmd
}

func newLogsCommand(c *cli) *cobra.Command {
	var lines int
	var grep []string
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the end of the log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Apply(c.loader); err != nil {
				return err
			}
			tail, err := logtail.Read(cfg.LogFile, lines)
			if err != nil {
				return err
			}
			for _, line := range logtail.Filter(tail, grep...) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines to read from the end")
	cmd.Flags().StringArrayVar(&grep, "grep", nil, "keep lines containing this text (repeatable, case-insensitive)")
	return cmd
}

// formFromUsers builds a form with one row per name:email:password value. The
// password may itself contain colons.
func formFromUsers(values []string) (*bulk.Form, error) {
	if len(values) == 0 {
		return nil, errors.New("at least one --user is required")
	}
	form := bulk.NewForm()
	for i, value := range values {
		parts := strings.SplitN(value, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("--user %q: want name:email:password", value)
		}
		if i > 0 {
			form.AddRow()
		}
		for f, part := range parts {
			if err := form.Set(i, bulk.Field(f), part); err != nil {
				return nil, err
			}
		}
	}
	return form, nil
}

// loadSession reads the session file. An unreadable file is reported and
// replaced on the next save.
func loadSession(cmd *cobra.Command, path string) *session.Session {
	sess, err := session.Load(path)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: session unreadable, starting fresh: %v\n", err)
	}
	return sess
}

// sessionAware clears stored credentials when err is a 401/403 so the next
// run asks for a new token.
func sessionAware(env *app.Env, err error) error {
	if !homeapi.IsSessionExpired(err) {
		return err
	}
	env.Session.ClearCredentials()
	if saveErr := env.Session.Save(); saveErr != nil {
		env.Logger.Warn("save session", zap.Error(saveErr))
	}
	return fmt.Errorf("%w: run `homedash login --token ...`", err)
}
