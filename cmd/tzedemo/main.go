package main

import (
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var opt = DefaultOptions()

var cmdMain = &cobra.Command{
	Use:   "tzedemo",
	Short: "Build, verify and apply transactions with transparent zcash extensions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(opt, afero.NewOsFs(), RunDemo)
	},
}

var cmdList = &cobra.Command{
	Use:   "list",
	Short: "List unspent TZE outputs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(opt, afero.NewOsFs(), ListOutputs)
	},
}

func init() {
	flags := cmdMain.PersistentFlags()
	flags.StringVar(&opt.DataDir, "datadir", opt.DataDir, "Data directory")
	flags.StringVar(&opt.Network, "network", opt.Network, "Network: mainnet, testnet3, regtest or simnet")
	flags.StringVar(&opt.Mnemonic, "mnemonic", "", "Wallet mnemonic")
	flags.StringVar(&opt.Password, "password", "", "Wallet password")
	flags.StringVar(&opt.LogLevel, "log-level", opt.LogLevel, "Log level")
	flags.StringVar(&opt.InstanceId, "instance", "", "Instance identifier, random if empty")

	cmdMain.Flags().Int64Var((*int64)(&opt.Faucet), "faucet", int64(opt.Faucet), "Amount seeded when the wallet has no spendable output, in satoshi")
	cmdMain.Flags().Int64Var((*int64)(&opt.Pay), "pay", int64(opt.Pay), "Transparent output amount, in satoshi")
	cmdMain.Flags().Int64Var((*int64)(&opt.Fee), "fee", int64(opt.Fee), "Fee per transaction, in satoshi")
	cmdMain.Flags().StringVar(&opt.PayTo, "pay-to", "", "Transparent output address, the wallet's second address if empty")

	cmdMain.AddCommand(cmdList)
}

func main() {
	if err := cmdMain.Execute(); err != nil {
		os.Exit(1)
	}
}
