package main

import (
	"strconv"

	"github.com/couchcryptid/hotspot-etl/internal/domain"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderSummary prints one row per season: how many hotspots were ranked and
// the leading hotspot with its strongest notable species.
func renderSummary(out domain.Output) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Seasonal hotspots (%d species, %d observations)", out.Stats.TotalSpecies, out.Stats.TotalObservations)
	tw.AppendHeader(table.Row{"Season", "Hotspots", "Top hotspot", "Top species", "Score"})

	for _, season := range domain.Seasons {
		entries := out.Seasonal.Season(season)
		row := table.Row{season.String(), strconv.Itoa(len(entries)), "", "", ""}
		if len(entries) > 0 {
			top := entries[0]
			row[2] = top.HotspotName
			if len(top.NotableSpecies) > 0 {
				row[3] = top.NotableSpecies[0].Name
				row[4] = strconv.FormatFloat(top.NotableSpecies[0].Score, 'f', 2, 64)
			} else if len(top.RareSpecies) > 0 {
				row[3] = top.RareSpecies[0].Name + " (rare)"
			}
		}
		tw.AppendRow(row)
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
