package catalog

import (
	"strconv"
	"strings"
)

// RenderDay formats a day as its title followed by one numbered line per
// exercise: "1. Name: 3×8-10 — note".
func RenderDay(d WorkoutDay) string {
	var b strings.Builder
	b.WriteString(d.Title)
	for i, e := range d.Exercises {
		b.WriteByte('\n')
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(e.Name)
		b.WriteString(": ")
		b.WriteString(strconv.Itoa(e.Sets))
		b.WriteString("×")
		b.WriteString(e.Reps)
		if e.Note != "" {
			b.WriteString(" — ")
			b.WriteString(e.Note)
		}
	}
	return b.String()
}

// RenderProgram formats the header and every day, separated by blank lines.
func RenderProgram(p Program) string {
	parts := make([]string, 0, len(p.Days)+1)
	header := p.Title
	if p.Description != "" {
		header += "\n" + p.Description
	}
	header += "\nТренировок в неделю: " + strconv.Itoa(p.WeeklyDays)
	parts = append(parts, header)
	for _, d := range p.Days {
		parts = append(parts, RenderDay(d))
	}
	return strings.Join(parts, "\n\n")
}
