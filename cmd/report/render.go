package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/shrimpsizemoose/teachteam/internal/models"
	"github.com/shrimpsizemoose/teachteam/internal/ranking"
)

func renderShortlist(w io.Writer, shortlist []models.ShortlistedTutor) {
	color.Yellow("\nShortlist")
	if len(shortlist) == 0 {
		fmt.Fprintln(w, "Nobody is shortlisted")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Tutor", "Name", "Shortlisted"})
	for i, s := range shortlist {
		table.Append([]string{
			strconv.Itoa(i + 1),
			s.Tutor,
			s.Name,
			s.ShortlistedAt.Format("2006-01-02 15:04"),
		})
	}
	table.Render()
}

func renderRankings(w io.Writer, lists []models.RankingList) {
	for _, list := range lists {
		color.Yellow("\nRanking by %s", list.Lecturer)
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Rank", "Tutor"})
		for _, e := range list.Entries {
			table.Append([]string{strconv.Itoa(e.Rank + 1), e.Tutor})
		}
		table.Render()
	}
}

func renderChart(w io.Writer, scores []ranking.Score) {
	color.Yellow("\nPopularity chart")
	if len(scores) == 0 {
		fmt.Fprintln(w, "No scores yet")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Place", "Tutor", "Name", "Score"})
	for i, s := range scores {
		table.Append([]string{
			strconv.Itoa(i + 1),
			s.Tutor,
			s.Name,
			strconv.Itoa(s.Score),
		})
	}
	table.Render()
}
