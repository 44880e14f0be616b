// Daily3Albums Unlock
// Copyright (c) 2026 The Daily3Albums Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Daily3Albums Unlock.
//
// Daily3Albums Unlock is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Daily3Albums Unlock is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Daily3Albums Unlock.  If not, see <http://www.gnu.org/licenses/>.


package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/daily3albums/unlock/pkg/api/models"
	"github.com/daily3albums/unlock/pkg/artifact"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var (
	nominalColor  = color.New(color.FgGreen, color.Bold)
	recoverColor  = color.New(color.FgYellow, color.Bold)
	degradedColor = color.New(color.FgRed, color.Bold)
	dimColor      = color.New(color.FgHiBlack)
	methodColor   = color.New(color.FgCyan)
)

func connectivityLabel(state string) string {
	switch state {
	case "NOMINAL":
		return nominalColor.Sprint(state)
	case "RECOVERED":
		return recoverColor.Sprint(state)
	case "DEGRADED":
		return degradedColor.Sprint(state)
	default:
		return state
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("error encoding output: %w", err)
	}
	return nil
}

func printState(w io.Writer, st *models.StateResponse) error {
	clockLine := st.Clock.Time
	if st.Clock.Override != nil {
		clockLine += " " + dimColor.Sprint("(override)")
	}

	_, _ = fmt.Fprintf(w, "Time:          %s\n", clockLine)
	_, _ = fmt.Fprintf(w, "Window:        %s\n", st.Window)
	_, _ = fmt.Fprintf(w, "Connectivity:  %s\n", connectivityLabel(st.Connectivity))
	if st.DegradedSince != nil {
		_, _ = fmt.Fprintf(w, "Degraded since: %s\n", *st.DegradedSince)
	}
	_, _ = fmt.Fprintf(w, "Showing:       %s\n", st.DisplaySource)
	if st.Artifact != nil {
		_, _ = fmt.Fprintf(w, "Picks:         %s (%s)", st.Artifact.Date, st.Artifact.RunID)
		if st.Artifact.ThemeOfDay != "" {
			_, _ = fmt.Fprintf(w, " %q", st.Artifact.ThemeOfDay)
		}
		_, _ = fmt.Fprintln(w)
	}
	if st.Message != "" {
		_, _ = fmt.Fprintf(w, "Message:       %s\n", st.Message)
	}
	if st.ArchiveMessage != "" {
		_, _ = fmt.Fprintf(w, "Archive:       %s\n", st.ArchiveMessage)
	}
	countdown := time.Duration(st.NextBoundary.CountdownSeconds) * time.Second
	_, _ = fmt.Fprintf(w, "Next unlock:   %s in %s\n", st.NextBoundary.Label, countdown)

	switch {
	case st.HardEmpty:
		_, _ = fmt.Fprintln(w, degradedColor.Sprint("No picks available."))
		return nil
	case st.Visible.Slot == nil:
		_, _ = fmt.Fprintln(w, dimColor.Sprint("Nothing unlocked yet."))
		return nil
	}

	_, _ = fmt.Fprintln(w)
	return printSlot(w, st.Visible.Slot)
}

func printSlot(w io.Writer, slot *artifact.Slot) error {
	if slot.Theme != "" {
		_, _ = fmt.Fprintf(w, "%s: %s\n", slot.WindowLabel, slot.Theme)
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Slot", "Title", "Artist", "Year", "Tags"})

	data := make([][]string, 0, len(slot.Picks))
	for _, item := range slot.Picks {
		year := ""
		if item.FirstReleaseYear != nil {
			year = strconv.Itoa(*item.FirstReleaseYear)
		}
		data = append(data, []string{
			item.Slot,
			item.Title,
			item.ArtistCredit,
			year,
			strings.Join(item.Tags, ", "),
		})
	}

	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("error writing table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("error writing table: %w", err)
	}
	return nil
}

func printOverride(w io.Writer, resp *models.OverrideResponse) {
	value := dimColor.Sprint("none")
	if resp.Value != nil {
		value = *resp.Value
	}
	_, _ = fmt.Fprintf(w, "Override: %s\n", value)
	_, _ = fmt.Fprintf(w, "Time:     %s\n", resp.Time)
}

func printIndex(w io.Writer, entries []artifact.IndexEntry) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Date", "Run", "Theme", "Run at"})

	data := make([][]string, 0, len(entries))
	for _, e := range entries {
		data = append(data, []string{e.Date, e.RunID, e.ThemeOfDay, e.RunAt})
	}

	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("error writing table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("error writing table: %w", err)
	}
	return nil
}

func printNotification(w io.Writer, n models.Notification) {
	params := string(n.Params)
	if params == "" {
		params = "{}"
	}
	_, _ = fmt.Fprintf(w, "%s %s\n", methodColor.Sprint(n.Method), params)
}
