// Command capsulectl creates, inspects, approves, and unlocks CapsuleVault
// time capsules from the command line.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	capsulevault "github.com/capsulevault/client-go"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "capsulectl: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "capsulectl",
		Usage: "create and unlock CapsuleVault time capsules",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to a YAML config file"},
			&cli.StringFlag{Name: "ledger-url", Usage: "ledger API base URL"},
			&cli.StringFlag{Name: "store-url", Usage: "content store base URL"},
			&cli.StringFlag{Name: "api-key", Usage: "API key", EnvVars: []string{"CAPSULEVAULT_API_KEY"}},
			&cli.StringFlag{Name: "wallet", Usage: "wallet address", EnvVars: []string{"CAPSULEVAULT_WALLET_ADDRESS"}},
			&cli.BoolFlag{Name: "json", Usage: "emit JSON instead of human-readable output"},
		},
		Commands: []*cli.Command{
			createCommand(),
			unlockCommand(),
			statusCommand(),
			approveCommand(),
			pendingCommand(),
			listCommand(),
			batchCreateCommand(),
			verifyCommand(),
		},
	}
}

func buildClient(c *cli.Context) (*capsulevault.Client, *capsulevault.Config, error) {
	cfg, err := capsulevault.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, err
	}

	opts := []capsulevault.Option{capsulevault.WithConfig(cfg)}
	if v := c.String("ledger-url"); v != "" {
		opts = append(opts, capsulevault.WithLedgerURL(v))
	}
	if v := c.String("store-url"); v != "" {
		opts = append(opts, capsulevault.WithStoreURL(v))
	}
	if v := c.String("api-key"); v != "" {
		opts = append(opts, capsulevault.WithAPIKey(v))
	}
	if v := c.String("wallet"); v != "" {
		opts = append(opts, capsulevault.WithWalletAddress(v))
	}

	client, err := capsulevault.New(opts...)
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

func emit(c *cli.Context, cfg *capsulevault.Config, v any, human func()) error {
	if c.Bool("json") || cfg.OutputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	human()
	return nil
}

func createCommand() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "encrypt a file and register a capsule",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.TimestampFlag{Name: "unlock-at", Layout: time.RFC3339, Usage: "time condition: unlock time (RFC 3339)"},
			&cli.Uint64Flag{Name: "threshold", Usage: "multisig condition: required approvals"},
			&cli.StringSliceFlag{Name: "approver", Usage: "multisig condition: approver wallet (repeatable)"},
			&cli.Uint64Flag{Name: "price", Usage: "payment condition: asking price"},
			&cli.BoolFlag{Name: "wallet-bound", Usage: "derive the key from the wallet instead of returning one"},
			&cli.StringFlag{Name: "content-type", Usage: "MIME type recorded in the capsule metadata"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("create takes exactly one file argument", 2)
			}
			content, err := os.ReadFile(c.Args().First())
			if err != nil {
				return err
			}

			client, cfg, err := buildClient(c)
			if err != nil {
				return err
			}

			var createOpts []capsulevault.CreateOption
			if c.Bool("wallet-bound") {
				createOpts = append(createOpts, capsulevault.WithWalletBinding())
			}
			if v := c.String("content-type"); v != "" {
				createOpts = append(createOpts, capsulevault.WithContentType(v))
			}

			ctx := c.Context
			var result *capsulevault.CreateCapsuleResult
			switch {
			case c.Timestamp("unlock-at") != nil:
				unlockAt := uint64(c.Timestamp("unlock-at").UnixMilli())
				result, err = client.CreateTimeCapsule(ctx, content, unlockAt, createOpts...)
			case c.Uint64("threshold") > 0:
				result, err = client.CreateMultisigCapsule(ctx, content, c.Uint64("threshold"), c.StringSlice("approver"), createOpts...)
			case c.Uint64("price") > 0:
				result, err = client.CreatePaymentCapsule(ctx, content, c.Uint64("price"), createOpts...)
			default:
				return cli.Exit("one of --unlock-at, --threshold, or --price is required", 2)
			}
			if err != nil {
				return err
			}

			return emit(c, cfg, result, func() {
				fmt.Printf("capsule:  %s\n", result.CapsuleID)
				fmt.Printf("tx:       %s\n", result.TransactionID)
				fmt.Printf("cid:      %s\n", result.CID)
				fmt.Printf("hash:     %s\n", result.ContentHash)
				if result.EncryptionKey != "" {
					fmt.Printf("key:      %s\n", result.EncryptionKey)
					fmt.Println("store the key now; it is not shown again")
				}
			})
		},
	}
}

func unlockCommand() *cli.Command {
	return &cli.Command{
		Name:      "unlock",
		Usage:     "unlock a capsule and write its content",
		ArgsUsage: "<capsule-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "key", Usage: "base64 encryption key for randomly keyed capsules"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default stdout)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("unlock takes exactly one capsule id", 2)
			}

			client, _, err := buildClient(c)
			if err != nil {
				return err
			}

			var unlockOpts []capsulevault.UnlockOption
			if v := c.String("key"); v != "" {
				unlockOpts = append(unlockOpts, capsulevault.WithKey(v))
			}

			result, err := client.UnlockCapsule(c.Context, c.Args().First(), unlockOpts...)
			if err != nil {
				return err
			}

			if out := c.String("out"); out != "" {
				return os.WriteFile(out, result.Content, 0o600)
			}
			_, err = os.Stdout.Write(result.Content)
			return err
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "show a capsule's metadata and unlock condition",
		ArgsUsage: "<capsule-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("status takes exactly one capsule id", 2)
			}

			client, cfg, err := buildClient(c)
			if err != nil {
				return err
			}

			status, err := client.CapsuleStatus(c.Context, c.Args().First())
			if err != nil {
				return err
			}

			return emit(c, cfg, status, func() {
				printCapsule(status.Capsule)
				if status.Unlockable {
					fmt.Println("unlockable: yes")
				} else {
					fmt.Printf("unlockable: no (%s)\n", status.Reason)
				}
			})
		},
	}
}

func approveCommand() *cli.Command {
	return &cli.Command{
		Name:      "approve",
		Usage:     "approve a multisig capsule as the configured wallet",
		ArgsUsage: "<capsule-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("approve takes exactly one capsule id", 2)
			}

			client, cfg, err := buildClient(c)
			if err != nil {
				return err
			}

			result, err := client.ApproveCapsule(c.Context, c.Args().First())
			if err != nil {
				return err
			}

			return emit(c, cfg, result, func() {
				fmt.Printf("tx:        %s\n", result.TransactionID)
				fmt.Printf("approvals: %d of %d\n", result.CurrentApprovals, result.RequiredApprovals)
			})
		},
	}
}

func pendingCommand() *cli.Command {
	return &cli.Command{
		Name:  "pending",
		Usage: "list multisig capsules awaiting this wallet's approval",
		Action: func(c *cli.Context) error {
			client, cfg, err := buildClient(c)
			if err != nil {
				return err
			}

			pending, err := client.PendingApprovals(c.Context)
			if err != nil {
				return err
			}

			return emit(c, cfg, pending, func() {
				for _, p := range pending {
					fmt.Printf("%s  %d/%d  owner %s\n", p.CapsuleID, p.CurrentApprovals, p.RequiredApprovals, p.Owner)
				}
			})
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list capsules",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Usage: "filter by condition type (time, multisig, payment)"},
			&cli.StringFlag{Name: "status", Usage: "filter by status (locked, unlocked)"},
			&cli.BoolFlag{Name: "mine", Usage: "only capsules owned by the configured wallet"},
			&cli.IntFlag{Name: "limit", Value: 50, Usage: "page size"},
			&cli.IntFlag{Name: "offset", Usage: "page offset"},
		},
		Action: func(c *cli.Context) error {
			client, cfg, err := buildClient(c)
			if err != nil {
				return err
			}

			query := capsulevault.NewCapsuleQuery().
				WithLimit(c.Int("limit")).
				WithOffset(c.Int("offset"))
			if v := c.String("type"); v != "" {
				query = query.WithType(capsulevault.ConditionType(v))
			}
			if v := c.String("status"); v != "" {
				query = query.WithStatus(v)
			}
			if c.Bool("mine") {
				query = query.Mine()
			}

			capsules, err := client.ListCapsules(c.Context, query)
			if err != nil {
				return err
			}

			return emit(c, cfg, capsules, func() {
				for _, capsule := range capsules {
					state := "locked"
					if capsule.Unlocked {
						state = "unlocked"
					}
					fmt.Printf("%s  %-8s  %-8s  %s\n", capsule.ID, capsule.Condition.Type, state, capsule.Owner)
				}
			})
		},
	}
}

func batchCreateCommand() *cli.Command {
	return &cli.Command{
		Name:      "batch-create",
		Usage:     "encrypt many files into one capsule each",
		ArgsUsage: "<path>...",
		Flags: []cli.Flag{
			&cli.TimestampFlag{Name: "unlock-at", Layout: time.RFC3339, Usage: "unlock time (RFC 3339), applied to every capsule"},
			&cli.StringSliceFlag{Name: "ext", Usage: "only collect files with this extension (repeatable)"},
			&cli.BoolFlag{Name: "recursive", Aliases: []string{"r"}, Usage: "descend into subdirectories"},
			&cli.IntFlag{Name: "concurrency", Usage: "parallel workers (default from config)"},
			&cli.Float64Flag{Name: "rate", Usage: "capsule operations per second (0 = unpaced)"},
			&cli.BoolFlag{Name: "wallet-bound", Usage: "derive keys from the wallet instead of returning them"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("batch-create takes one or more paths", 2)
			}
			if c.Timestamp("unlock-at") == nil {
				return cli.Exit("--unlock-at is required", 2)
			}

			client, cfg, err := buildClient(c)
			if err != nil {
				return err
			}

			collector := capsulevault.NewFileCollector()
			collector.MaxFileSize = cfg.MaxFileSize
			collector.Extensions = c.StringSlice("ext")
			collector.Recursive = c.Bool("recursive")

			files, err := collector.Collect(c.Args().Slice()...)
			if err != nil {
				return err
			}

			batchCfg := capsulevault.DefaultBatchConfig()
			batchCfg.MaxConcurrent = cfg.MaxConcurrent
			if v := c.Int("concurrency"); v > 0 {
				batchCfg.MaxConcurrent = v
			}
			batchCfg.RatePerSecond = c.Float64("rate")

			var createOpts []capsulevault.CreateOption
			if c.Bool("wallet-bound") {
				createOpts = append(createOpts, capsulevault.WithWalletBinding())
			}

			condition := capsulevault.UnlockCondition{
				Type:       capsulevault.ConditionTime,
				UnlockTime: uint64(c.Timestamp("unlock-at").UnixMilli()),
			}

			result, err := client.BatchCreate(c.Context, files, condition, batchCfg, createOpts...)
			if err != nil {
				return err
			}

			return emit(c, cfg, result, func() {
				for _, item := range result.Successful {
					line := fmt.Sprintf("ok    %s  %s", item.CapsuleID, item.Path)
					if item.EncryptionKey != "" {
						line += "  key=" + item.EncryptionKey
					}
					fmt.Println(line)
				}
				for _, failure := range result.Failed {
					fmt.Printf("fail  %s  %v\n", failure.Path, failure.Err)
				}
				fmt.Printf("%d created, %d failed, %d bytes\n", len(result.Successful), len(result.Failed), result.TotalSize)
			})
		},
	}
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "check a plaintext file against a recorded content hash",
		ArgsUsage: "<file> <hash>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("verify takes a file and a hex hash", 2)
			}
			content, err := os.ReadFile(c.Args().Get(0))
			if err != nil {
				return err
			}

			client, _, err := buildClient(c)
			if err != nil {
				return err
			}

			ok, err := client.VerifyContent(content, strings.ToLower(c.Args().Get(1)))
			if err != nil {
				return err
			}
			if !ok {
				return cli.Exit("hash mismatch", 1)
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func printCapsule(capsule *capsulevault.Capsule) {
	state := "locked"
	if capsule.Unlocked {
		state = "unlocked"
	}
	fmt.Printf("id:       %s\n", capsule.ID)
	fmt.Printf("owner:    %s\n", capsule.Owner)
	fmt.Printf("state:    %s\n", state)
	fmt.Printf("cid:      %s\n", capsule.CID)
	fmt.Printf("hash:     %s\n", capsule.ContentHash)
	fmt.Printf("size:     %d\n", capsule.ContentSize)
	if capsule.ContentType != "" {
		fmt.Printf("type:     %s\n", capsule.ContentType)
	}
	switch capsule.Condition.Type {
	case capsulevault.ConditionTime:
		at := time.UnixMilli(int64(capsule.Condition.UnlockTime)).UTC()
		fmt.Printf("unlocks:  %s\n", at.Format(time.RFC3339))
	case capsulevault.ConditionMultisig:
		fmt.Printf("approvals: %d of %d (%s)\n",
			len(capsule.Condition.Approvals),
			capsule.Condition.Threshold,
			strings.Join(capsule.Condition.Approvers, ", "))
	case capsulevault.ConditionPayment:
		fmt.Printf("price:    %d (paid: %v)\n", capsule.Condition.Price, capsule.Condition.Paid)
	}
}
