package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resonance-engine/core"
	"resonance-engine/pkg/config"
)

func main() {
	rootCmd := &cobra.Command{Use: "enginectl"}
	rootCmd.AddCommand(publishCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(inspectCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newExecutor wires a fresh in-memory engine instance from config, the way
// a short-lived CLI invocation needs: one store, one set of registries, no
// persistence across runs.
func newExecutor() (*core.TransactionExecutor, *core.InMemoryStore) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		cfg = &config.Config{}
		cfg.VM.GasLimit = 10_000_000
	}
	core.ConfigureLogging(cfg.Logging.Level, cfg.Logging.JSON)

	store := core.NewInMemoryStore()
	packages := core.NewPackageRegistry()
	components := core.NewComponentRegistry()
	resources := core.NewResourceRegistry()
	engine := core.NewWasmerEngine()

	gasLimit := cfg.VM.GasLimit
	if gasLimit == 0 {
		gasLimit = 10_000_000
	}

	allowAll := func(unsignedBody, signerPubKey, signature []byte) bool { return true }
	executor := core.NewTransactionExecutor(store, packages, components, resources, engine, gasLimit, allowAll)
	return executor, store
}

func publishCmd() *cobra.Command {
	var codePath string
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "publish a WASM blueprint package",
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := os.ReadFile(codePath)
			if err != nil {
				return fmt.Errorf("read %s: %w", codePath, err)
			}
			executor, store := newExecutor()
			track := core.NewTrack(store, core.HashBytes(code))
			pkg, err := executor.Packages.Publish(track, executor.Engine, code, nil)
			if err != nil {
				return err
			}
			track.Commit()
			fmt.Printf("published package %s\n", pkg.Address.Hex())
			return nil
		},
	}
	cmd.Flags().StringVar(&codePath, "code", "", "path to compiled WASM blueprint")
	cmd.MarkFlagRequired("code")
	return cmd
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [manifest.yaml]",
		Short: "execute a transaction manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instrs, epochMin, epochMax, nonce, err := loadManifest(args[0])
			if err != nil {
				return err
			}
			executor, _ := newExecutor()

			body := []byte(args[0])
			signed := &core.SignedTransaction{
				Instructions: instrs,
				UnsignedBody: body,
				TxHash:       core.HashBytes(body),
				EpochMin:     epochMin,
				EpochMax:     epochMax,
				Nonce:        nonce,
			}
			receipt := executor.Execute(signed)
			return printReceipt(receipt)
		},
	}
	return cmd
}

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [manifest.yaml]",
		Short: "print the decoded instruction list without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instrs, epochMin, epochMax, nonce, err := loadManifest(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("epoch=[%d,%d] nonce=%d instructions=%d\n", epochMin, epochMax, nonce, len(instrs))
			for i, in := range instrs {
				fmt.Printf("  %d: kind=%d method=%q blueprint=%q\n", i, in.Kind, in.Method, in.Blueprint)
			}
			return nil
		},
	}
	return cmd
}

type receiptView struct {
	Ok       bool     `json:"ok"`
	Error    string   `json:"error,omitempty"`
	NewAddrs []string `json:"new_addresses,omitempty"`
	Logs     []string `json:"logs,omitempty"`
}

func printReceipt(r *core.Receipt) error {
	view := receiptView{Ok: r.Success()}
	if !r.Success() {
		view.Error = r.Err.Error()
	}
	for _, a := range r.NewAddrs {
		view.NewAddrs = append(view.NewAddrs, a.Hex())
	}
	for _, l := range r.Logs {
		view.Logs = append(view.Logs, l.Message)
	}
	out, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	if !r.Success() {
		os.Exit(1)
	}
	return nil
}
