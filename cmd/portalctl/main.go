// Package main is the entry point for portalctl, a command-line client for the
// insurance portal API. The credential is kept in a local SQLite file so that
// a login survives between invocations.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	portalbridge "github.com/opengovern/portal-bridge"
	"github.com/opengovern/portal-bridge/adapters"
	"github.com/opengovern/portal-bridge/services"
	"github.com/opengovern/portal-bridge/storage"
)

const (
	defaultStateFile = ".portalctl.db"
	headerClientName = "X-Client-Name"
)

func main() {
	ctx, stop := signalContext()
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is built once per invocation in PersistentPreRunE.
type app struct {
	sdk   *portalbridge.PortalBridge
	svc   *services.Services
	store *storage.SQLiteTokenStore
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "portalctl",
		Short: "Command-line client for the insurance portal API",
		Long: `portalctl talks to the portal API configured by PORTAL_API_URL.

Example:
  PORTAL_API_URL=https://portal.example.com/api portalctl login --email me@example.com
  portalctl claims list --status submitted`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.store.Close()
		},
	}
	rootCmd.PersistentFlags().String("state", defaultStatePath(), "Path to the local credential store (SQLite)")

	rootCmd.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newPoliciesCmd(a),
		newClaimsCmd(a),
	)
	return rootCmd
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultStateFile
	}
	return filepath.Join(home, defaultStateFile)
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := portalbridge.LoadConfig()
	if err != nil {
		return err
	}
	statePath, err := cmd.Flags().GetString("state")
	if err != nil {
		return fmt.Errorf("failed to get state flag: %w", err)
	}
	a.store, err = storage.OpenSQLiteTokenStore(cmd.Context(), statePath)
	if err != nil {
		return err
	}

	a.sdk = portalbridge.NewPortalBridge(cfg, adapters.NewPortalAdapterFromConfig(cfg),
		portalbridge.WithTokenStore(a.store),
		portalbridge.WithRequestInterceptor(portalbridge.HeaderInterceptor(headerClientName, "portalctl")),
		portalbridge.WithLoginRedirect(func() {
			fmt.Fprintln(os.Stderr, "Session expired. Run `portalctl login` again.")
		}),
	)
	a.svc = services.New(a.sdk)
	return nil
}

func newLoginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			password := os.Getenv("PORTAL_PASSWORD")
			if password == "" {
				return fmt.Errorf("PORTAL_PASSWORD must be set")
			}
			env, err := a.svc.Auth.Login(cmd.Context(), services.Credentials{Email: email, Password: password})
			if err != nil {
				return err
			}
			if env.Data != nil {
				fmt.Printf("Logged in as %s\n", env.Data.User.Email)
			}
			return nil
		},
	}
	cmd.Flags().String("email", "", "Account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.svc.Auth.Logout(cmd.Context())
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := a.svc.Auth.Me(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(env.Data)
		},
	}
}

func newPoliciesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "policies", Short: "Work with insurance policies"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List policies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := pageFlags(cmd)
			if err != nil {
				return err
			}
			status, _ := cmd.Flags().GetString("status")
			search, _ := cmd.Flags().GetString("search")
			env, err := a.svc.Policies.List(cmd.Context(), page, &services.PolicyFilter{
				Status: services.PolicyStatus(status),
				Search: search,
			})
			if err != nil {
				return err
			}
			for _, p := range env.Data {
				fmt.Printf("%-12s %-10s %-10s premium=%s\n", p.PolicyNumber, p.Type, p.Status, p.Premium.StringFixed(2))
			}
			fmt.Printf("Page %d / %d (%d total)\n", env.CurrentPage, env.TotalPages, env.TotalCount)
			return nil
		},
	}
	addPageFlags(list)
	list.Flags().String("status", "", "Filter by status")
	list.Flags().String("search", "", "Free-text search")

	renew := &cobra.Command{
		Use:   "renew <policy-id>",
		Short: "Renew a policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.svc.Policies.Renew(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(env.Data)
		},
	}

	cmd.AddCommand(list, renew)
	return cmd
}

func newClaimsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "claims", Short: "Work with claims"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List claims",
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := pageFlags(cmd)
			if err != nil {
				return err
			}
			status, _ := cmd.Flags().GetString("status")
			policyID, _ := cmd.Flags().GetString("policy")
			env, err := a.svc.Claims.List(cmd.Context(), page, &services.ClaimFilter{
				Status:   services.ClaimStatus(status),
				PolicyID: policyID,
			})
			if err != nil {
				return err
			}
			for _, c := range env.Data {
				fmt.Printf("%-12s %-14s claimed=%s\n", c.ClaimNumber, c.Status, c.ClaimedAmount.StringFixed(2))
			}
			fmt.Printf("Page %d / %d (%d total)\n", env.CurrentPage, env.TotalPages, env.TotalCount)
			return nil
		},
	}
	addPageFlags(list)
	list.Flags().String("status", "", "Filter by status")
	list.Flags().String("policy", "", "Filter by policy id")

	get := &cobra.Command{
		Use:   "get <claim-id>...",
		Short: "Show one or more claims",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claims, err := a.svc.Claims.GetMany(cmd.Context(), args)
			for i, env := range claims {
				if env == nil {
					continue
				}
				fmt.Printf("# %s\n", args[i])
				if perr := printJSON(env.Data); perr != nil {
					return perr
				}
			}
			return err
		},
	}

	upload := &cobra.Command{
		Use:   "upload <claim-id> <file>",
		Short: "Attach a document to a claim",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[1], err)
			}
			defer f.Close()

			env, err := a.svc.Claims.UploadDocument(cmd.Context(), args[0], filepath.Base(args[1]), f, func(percent int) {
				fmt.Fprintf(os.Stderr, "\ruploading %3d%%", percent)
			})
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return err
			}
			if env.Data != nil {
				fmt.Printf("Uploaded %s as %s\n", env.Data.FileName, env.Data.ID)
			}
			return nil
		},
	}

	cmd.AddCommand(list, get, upload)
	return cmd
}

func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", portalbridge.DefaultPage, "Page number")
	cmd.Flags().Int("limit", portalbridge.DefaultPageLimit, "Page size")
}

func pageFlags(cmd *cobra.Command) (*portalbridge.PageParams, error) {
	page, err := cmd.Flags().GetInt("page")
	if err != nil {
		return nil, fmt.Errorf("failed to get page flag: %w", err)
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return nil, fmt.Errorf("failed to get limit flag: %w", err)
	}
	return &portalbridge.PageParams{Page: page, Limit: limit}, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// signalContext cancels on SIGINT or SIGTERM so an in-flight retry wait stops.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
