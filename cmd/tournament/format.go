package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mmynk/tournament/internal/models"
	"github.com/mmynk/tournament/internal/swiss"
)

// formatTable left-aligns rows under header, two spaces between columns.
func formatTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if l := len(cell); l > widths[i] {
				widths[i] = l
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i == len(cells)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(fmt.Sprintf("%-*s  ", widths[i], cell))
		}
		sb.WriteString("\n")
	}

	writeRow(header)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

// formatStandings renders standings with a place column; equal records share a place.
func formatStandings(standings []models.Standing) string {
	if len(standings) == 0 {
		return "No players registered\n"
	}

	rows := make([][]string, 0, len(standings))
	for i, s := range standings {
		rank := ""
		if i == 0 || s.Wins != standings[i-1].Wins || s.MatchesPlayed != standings[i-1].MatchesPlayed {
			rank = strconv.Itoa(i+1) + "."
		}

		rows = append(rows, []string{
			rank,
			strconv.FormatInt(s.PlayerID, 10),
			s.PlayerName,
			strconv.Itoa(s.Wins),
			strconv.Itoa(s.MatchesPlayed),
			fmt.Sprintf("%.2f", swiss.WinRatio(s.Wins, s.MatchesPlayed)*100),
		})
	}
	return formatTable([]string{"Place", "ID", "Name", "Wins", "Played", "Pct"}, rows)
}

// formatPairings renders one line per board.
func formatPairings(pairings []models.Pairing) string {
	if len(pairings) == 0 {
		return "No pairings\n"
	}

	rows := make([][]string, 0, len(pairings))
	for i, p := range pairings {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			fmt.Sprintf("%d %s", p.PlayerOneID, p.PlayerOneName),
			fmt.Sprintf("%d %s", p.PlayerTwoID, p.PlayerTwoName),
		})
	}
	return formatTable([]string{"Board", "Player", "Opponent"}, rows)
}
