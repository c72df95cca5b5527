package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ortelius/pdvd-cvelookup/model"
	"github.com/ortelius/pdvd-cvelookup/util"
	"github.com/spf13/cobra"
)

func createLookupCmd(root *rootOptions) *cobra.Command {
	var (
		format string
		items  []string
	)

	lookupCmd := &cobra.Command{
		Use:   "lookup [component label]...",
		Short: "Resolve component labels and print their CVE ids as JSON",
		Long: `
Resolve each component label against the reference store and print the result.

Labels are free text ("Microsoft Windows 1.2.5"), package URLs
("pkg:npm/lodash@4.17.20") or CPE 2.3 names. A component whose version is
already known can be given as --item "label=version".

Formats:
  map       component label to CVE ids, plus the aggregate "summary" key
  detailed  per-component resolution with matched product and outcome
  osv       the matched CVEs as OSV records
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "map", "detailed", "osv":
			default:
				return fmt.Errorf("unknown format %q", format)
			}

			reqs := make([]model.ComponentRequest, 0, len(args)+len(items))
			for _, a := range args {
				reqs = append(reqs, model.ComponentRequest{Label: a})
			}
			for _, it := range items {
				label, version, ok := strings.Cut(it, "=")
				if !ok || label == "" {
					return fmt.Errorf("invalid --item %q, want label=version", it)
				}
				reqs = append(reqs, model.ComponentRequest{Label: label, Version: version})
			}
			if len(reqs) == 0 {
				return fmt.Errorf("no components given")
			}

			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx := cmd.Context()
			engine, store, err := openEngine(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := engine.Lookup(ctx, reqs)
			if err != nil {
				return err
			}

			var out any
			switch format {
			case "detailed":
				out = result
			case "osv":
				recs, err := engine.Describe(ctx, result.Summary)
				if err != nil {
					return err
				}
				out = map[string]any{"vulns": util.ToOSVList(recs)}
			default:
				out = result.AsMap()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	lookupCmd.Flags().StringVarP(&format, "format", "f", "map", "Output format: map, detailed or osv")
	lookupCmd.Flags().StringArrayVar(&items, "item", nil, "Component with a known version as label=version (repeatable)")
	return lookupCmd
}
