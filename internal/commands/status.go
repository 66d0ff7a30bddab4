package commands

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/zklink-protocol/starknet-deployer/configs"
	"github.com/zklink-protocol/starknet-deployer/internal/ledger"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputYAML  = "yaml"
)

var ledgerNames = map[string]string{
	"zklink":    ledger.NameZklink,
	"multicall": ledger.NameMulticall,
	"token":     ledger.NameFaucet,
}

var statusCmd = &cobra.Command{
	Use:         "status",
	Short:       "Print a deployment log of the network",
	Annotations: map[string]string{annotationConfig: configOptional},
	RunE: func(cmd *cobra.Command, args []string) error {
		which, err := cmd.Flags().GetString("ledger")
		if err != nil {
			return err
		}
		output, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}

		name, ok := ledgerNames[which]
		if !ok {
			return fmt.Errorf("unknown deployment log '%s', expected zklink, multicall or token", which)
		}

		store := newStore(configs.Values.Runtime)
		record, err := store.Load(name)
		if err != nil {
			return err
		}

		return renderRecord(cmd.OutOrStdout(), store.Path(name), record, output)
	},
}

func renderRecord(w io.Writer, path string, record ledger.Record, output string) error {
	switch output {
	case outputYAML:
		values := make(map[string]string, len(record))
		for _, key := range record.Keys() {
			values[key], _ = record.String(key)
		}
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(values); err != nil {
			return fmt.Errorf("failed to encode deployment log: %w", err)
		}
		return encoder.Close()
	case outputTable:
		if _, err := fmt.Fprintln(w, path); err != nil {
			return err
		}

		table := tablewriter.NewWriter(w)
		table.Header("Key", "Value")
		for _, key := range record.Keys() {
			value, _ := record.String(key)
			if err := table.Append([]string{key, value}); err != nil {
				return err
			}
		}
		return table.Render()
	default:
		return fmt.Errorf("unknown output format '%s', expected %s or %s", output, outputTable, outputYAML)
	}
}

func init() {
	statusCmd.Flags().String("ledger", "zklink", "Deployment log to print (zklink, multicall or token)")
	statusCmd.Flags().String("output", outputTable, "Output format (table or yaml)")
}
