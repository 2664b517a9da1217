package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/tradeledger/internal/domain"
	"github.com/iho/tradeledger/internal/infrastructure/auth"
)

// errCheckFailed makes the process exit non-zero after the report was printed.
var errCheckFailed = errors.New("consistency check failed")

type options struct {
	baseURL string
	timeout time.Duration
	token   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "tradeledger-cli",
		Short:         "TradeLedger CLI tool",
		Long:          `A command line interface for operating the TradeLedger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the TradeLedger API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("TRADELEDGER_TOKEN"), "Bearer token for the API")

	rootCmd.AddCommand(ledgerCmd(opts), memberCmd(opts), paymentCmd(opts), tokenCmd())

	return rootCmd
}

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check that every processed payment has exactly one ledger entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, body, err := opts.do(cmd.Context(), http.MethodGet, "/api/v1/ledger/consistency")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch status {
			case http.StatusOK:
				fmt.Fprintln(out, "Consistency check PASSED")
				return printJSON(out, body)
			case http.StatusConflict:
				fmt.Fprintln(out, "Consistency check FAILED")
				if err := printJSON(out, body); err != nil {
					return err
				}
				return errCheckFailed
			default:
				return apiError(status, body)
			}
		},
	})

	return cmd
}

func memberCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Member operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <user-id>",
		Short: "Show a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.print(cmd, http.MethodGet, "/api/v1/members/"+url.PathEscape(args[0]))
		},
	})

	var lock bool
	balanceCmd := &cobra.Command{
		Use:   "balance <user-id>",
		Short: "Show a member's balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/members/" + url.PathEscape(args[0]) + "/balance"
			if lock {
				path += "?lock=true"
			}
			return opts.print(cmd, http.MethodGet, path)
		},
	}
	balanceCmd.Flags().BoolVar(&lock, "lock", false, "Wait for in-flight operations on the member")
	cmd.AddCommand(balanceCmd)

	for _, action := range []string{"block", "unblock"} {
		cmd.AddCommand(&cobra.Command{
			Use:   action + " <user-id>",
			Short: strings.ToUpper(action[:1]) + action[1:] + " a member",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.print(cmd, http.MethodPost, "/api/v1/members/"+url.PathEscape(args[0])+"/"+action)
			},
		})
	}

	return cmd
}

func paymentCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Payment operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <payment-id>",
		Short: "Show a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.print(cmd, http.MethodGet, "/api/v1/payments/"+url.PathEscape(args[0]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "accept <payment-id>",
		Short: "Accept a payment and credit the member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.print(cmd, http.MethodPost, "/api/v1/payments/"+url.PathEscape(args[0])+"/accept")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "block <payment-id>",
		Short: "Block an unprocessed payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.print(cmd, http.MethodPost, "/api/v1/payments/"+url.PathEscape(args[0])+"/block")
		},
	})

	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Token operations",
	}

	var (
		secret string
		userID string
		role   string
		ttl    time.Duration
	)

	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a signed API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				return errors.New("--secret or JWT_SECRET is required")
			}

			r, err := domain.ParseRole(role)
			if err != nil {
				return err
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(domain.Identity{UserID: userID, Role: r})
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	issueCmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret")
	issueCmd.Flags().StringVar(&userID, "user", "", "Subject user ID")
	issueCmd.Flags().StringVar(&role, "role", string(domain.RoleMember), "Role: admin, operator or member")
	issueCmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = issueCmd.MarkFlagRequired("user")

	cmd.AddCommand(issueCmd)
	return cmd
}

// print performs the request and pretty-prints a successful response.
func (o *options) print(cmd *cobra.Command, method, path string) error {
	status, body, err := o.do(cmd.Context(), method, path)
	if err != nil {
		return err
	}

	if status >= http.StatusBadRequest {
		return apiError(status, body)
	}

	return printJSON(cmd.OutOrStdout(), body)
}

func (o *options) do(ctx context.Context, method, path string) (int, []byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(o.baseURL, "/")+path, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	if o.token != "" {
		req.Header.Set("Authorization", "Bearer "+o.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	return resp.StatusCode, body, nil
}

func apiError(status int, body []byte) error {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
		return fmt.Errorf("request failed (status %d): %s", status, truncate(string(body), 200))
	}

	if e.Message != "" {
		return fmt.Errorf("%s (status %d): %s", e.Error, status, e.Message)
	}
	return fmt.Errorf("%s (status %d)", e.Error, status)
}

func printJSON(w io.Writer, body []byte) error {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
