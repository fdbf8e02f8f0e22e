package reports

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"github.com/midiaz/brandscope/internal/domain/aggregate"
	"github.com/midiaz/brandscope/internal/domain/model"
)

// Prompt data shapes, one per report type. Field names match the template
// placeholders in the prompt YAML.

type marketSharePromptData struct {
	PeriodStart         string
	PeriodEnd           string
	FiltersText         string
	TotalEvents         int
	TotalAthletes       string
	TotalItems          string
	BrandRanking        string
	ProductDistribution string
}

type audiencePromptData struct {
	PeriodStart         string
	PeriodEnd           string
	FiltersText         string
	TotalEvents         int
	TotalAthletes       string
	TotalItems          string
	GenderDistribution  string
	AgeDistribution     string
	AvgAge              string
	BrandBySegment      string
}

type eventPromptData struct {
	EventName           string
	EventType           string
	Sport               string
	EventDate           string
	EventLocation       string
	TotalAthletes       string
	TotalPhotos         string
	TotalItems          string
	BrandRanking        string
	ProductDistribution string
	GenderInfo          string
	AvgAge              string
	FocusText           string
	FocusInstruction    string
}

func renderTemplate(name, text string, data any) (string, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", name, err)
	}
	return buf.String(), nil
}

func formatBrandRanking(ranking []aggregate.BrandShare, max int, withPersons bool) string {
	if len(ranking) == 0 {
		return "No brands detected"
	}
	if len(ranking) > max {
		ranking = ranking[:max]
	}
	lines := make([]string, 0, len(ranking))
	for i, b := range ranking {
		if withPersons {
			lines = append(lines, fmt.Sprintf("%d. %s: %s%% (%s items, %s persons)",
				i+1, b.Brand, formatFloat(b.SharePercent), humanInt(b.Items), humanInt(b.PersonsCount)))
		} else {
			lines = append(lines, fmt.Sprintf("%d. %s: %s%% (%s items)",
				i+1, b.Brand, formatFloat(b.SharePercent), humanInt(b.Items)))
		}
	}
	return strings.Join(lines, "\n")
}

func formatProductDistribution(products []aggregate.ProductShare, withItems bool) string {
	if len(products) == 0 {
		return "No products detected"
	}
	lines := make([]string, 0, len(products))
	for _, p := range products {
		if withItems {
			lines = append(lines, fmt.Sprintf("- %s: %s%% (%s items)",
				titleCase(p.ProductType), formatFloat(p.Percent), humanInt(p.Items)))
		} else {
			lines = append(lines, fmt.Sprintf("- %s: %s%%", titleCase(p.ProductType), formatFloat(p.Percent)))
		}
	}
	return strings.Join(lines, "\n")
}

func formatGenderDistribution(g aggregate.GenderDistribution) string {
	return fmt.Sprintf("- Male: %s%% (%s persons)\n- Female: %s%% (%s persons)",
		formatFloat(g.MalePercent), humanInt(g.Male),
		formatFloat(g.FemalePercent), humanInt(g.Female))
}

func formatGenderInfo(g aggregate.GenderDistribution) string {
	return fmt.Sprintf("Male: %s%% | Female: %s%%",
		formatFloat(g.MalePercent), formatFloat(g.FemalePercent))
}

func formatAgeDistribution(buckets []aggregate.AgeBucket) string {
	lines := make([]string, 0, len(buckets))
	for _, b := range buckets {
		lines = append(lines, fmt.Sprintf("- %s years: %s%% (%s persons)",
			b.AgeRange, formatFloat(b.Percent), humanInt(b.Count)))
	}
	return strings.Join(lines, "\n")
}

func formatBrandBySegment(segments []aggregate.SegmentShare) string {
	if len(segments) == 0 {
		return "Insufficient data for segmentation"
	}
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		brands := seg.Brands
		if len(brands) > 3 {
			brands = brands[:3]
		}
		parts := make([]string, 0, len(brands))
		for _, b := range brands {
			parts = append(parts, fmt.Sprintf("%s (%s%%)", b.Brand, formatFloat(b.SharePercent)))
		}
		lines = append(lines, fmt.Sprintf("**%s**: %s", seg.Segment, strings.Join(parts, ", ")))
	}
	return strings.Join(lines, "\n")
}

func marketShareFiltersText(f MarketShareFilters) string {
	var lines []string
	if f.Sport != "" {
		lines = append(lines, "Sport: "+f.Sport)
	}
	if f.Location != "" {
		lines = append(lines, "Location: "+f.Location)
	}
	if f.ProductType != "" {
		lines = append(lines, "Product: "+f.ProductType)
	}
	if len(f.Brands) > 0 {
		lines = append(lines, "Brands analyzed: "+strings.Join(f.Brands, ", "))
	}
	return filtersTextOrDefault(lines)
}

func audienceFiltersText(f AudienceFilters) string {
	var lines []string
	if f.Sport != "" {
		lines = append(lines, "Sport: "+f.Sport)
	}
	if f.Location != "" {
		lines = append(lines, "Location: "+f.Location)
	}
	if f.ProductType != "" {
		lines = append(lines, "Product: "+f.ProductType)
	}
	return filtersTextOrDefault(lines)
}

func filtersTextOrDefault(lines []string) string {
	if len(lines) == 0 {
		return "No filters applied (overall analysis)"
	}
	return strings.Join(lines, "\n")
}

func marketShareFiltersApplied(f MarketShareFilters) map[string]any {
	applied := map[string]any{"date_from": f.DateFrom, "date_to": f.DateTo}
	if f.Sport != "" {
		applied["sport"] = f.Sport
	}
	if f.Location != "" {
		applied["location"] = f.Location
	}
	if f.ProductType != "" {
		applied["product_type"] = f.ProductType
	}
	if len(f.Brands) > 0 {
		applied["brands"] = f.Brands
	}
	return applied
}

func audienceFiltersApplied(f AudienceFilters) map[string]any {
	applied := map[string]any{"date_from": f.DateFrom, "date_to": f.DateTo}
	if f.Sport != "" {
		applied["sport"] = f.Sport
	}
	if f.Location != "" {
		applied["location"] = f.Location
	}
	if f.ProductType != "" {
		applied["product_type"] = f.ProductType
	}
	return applied
}

var focusLabels = map[string]string{
	"general":  "Overview (360)",
	"brands":   "Brand focus",
	"products": "Product focus",
	"audience": "Audience focus",
}

func focusLabel(focus string) string {
	if label, ok := focusLabels[focus]; ok {
		return label
	}
	return focusLabels["general"]
}

func periodTitle(base, sport, location string, from, to model.Date) string {
	parts := []string{base}
	if sport != "" {
		parts = append(parts, "- "+titleCase(sport))
	}
	if location != "" {
		parts = append(parts, "- "+location)
	}
	period := from.Format("Jan/2006") + " to " + to.Format("Jan/2006")
	parts = append(parts, "("+period+")")
	return strings.Join(parts, " ")
}

// humanInt renders an integer with thousands separators ("1,234").
func humanInt(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// formatFloat trims trailing zeros ("72.2", "50").
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
