package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"planeidler-sim/internal/catalog"
)

var (
	catalogAircraftPath string
	catalogUpgradesPath string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the aircraft and upgrade catalog",
	Long:  "catalog loads the aircraft and upgrade definitions and prints them; malformed entries are reported and skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, closer, err := newLogger(false)
		if err != nil {
			return err
		}
		defer closer.Close()

		cat, err := catalog.Load(catalogAircraftPath, catalogUpgradesPath)
		if err != nil {
			log.Warn("catalog loaded with errors", "err", err)
		}
		printCatalog(cmd.OutOrStdout(), cat)
		return nil
	},
}

func printCatalog(out io.Writer, cat *catalog.Catalog) {
	aircraft := append([]catalog.AircraftDef(nil), cat.Aircraft...)
	sort.SliceStable(aircraft, func(i, j int) bool { return aircraft[i].TierUnlock < aircraft[j].TierUnlock })

	fmt.Fprintln(out, "Aircraft:")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCLASS\tSTAND\tTIER\tWEIGHT\tRUNWAY")
	for _, a := range aircraft {
		runway := "any"
		if a.Runway != nil {
			runway = fmt.Sprintf("%.0fm %s", a.Runway.MinLengthMeters, a.Runway.Surface)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.1f\t%s\n", a.ID, a.Name(), a.Class, a.StandClass, a.TierUnlock, a.SpawnWeight, runway)
	}
	tw.Flush()

	upgrades := append([]catalog.UpgradeDef(nil), cat.Upgrades...)
	sort.SliceStable(upgrades, func(i, j int) bool { return upgrades[i].Tier < upgrades[j].Tier })

	fmt.Fprintln(out, "Upgrades:")
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTIER\tCOST\tBUILD\tREQUIRES")
	for _, u := range upgrades {
		req := strings.Join(u.Prerequisites, ",")
		if req == "" {
			req = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.0f\t%.0fs\t%s\n", u.ID, u.Name(), u.Tier, u.Cost, u.BuildTimeSeconds, req)
	}
	tw.Flush()
}

func init() {
	catalogCmd.Flags().StringVar(&catalogAircraftPath, "aircraft", "data/aircraft.json", "Aircraft catalog (JSON or YAML)")
	catalogCmd.Flags().StringVar(&catalogUpgradesPath, "upgrades", "data/upgrades.json", "Upgrade catalog (JSON or YAML)")
}
