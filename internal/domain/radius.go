package domain

import (
	"regexp"
	"strings"
)

var (
	// radiusRe matches "radius [radial|sektoral] <km> km", e.g.
	// "radius sektoral 5 km" -> tipe=sektoral, km=5.
	radiusRe = regexp.MustCompile(`(?i)radius(?:\s+(radial|sektoral))?\s+(\d+(?:[.,]\d+)?)\s*km`)

	// withinRadiusRe matches "dalam radius <km> km" ("within a radius of").
	withinRadiusRe = regexp.MustCompile(`(?i)dalam\s+radius\s+(\d+(?:[.,]\d+)?)\s*km`)

	// sectorAreaRe captures the area named after "sektoral", e.g.
	// "sektoral selatan-tenggara" -> "selatan-tenggara".
	sectorAreaRe = regexp.MustCompile(`(?i)sektoral\s+([a-z\-–]+(?:\s*[a-z\-–]+)*)`)
)

// ExtractRadii derives safety-radius facts from recommendation lines. Output is
// deduplicated by exact string, keeping first-occurrence order, and is never nil.
//
// A line matched by both patterns ("dalam radius 3 km") yields the same
// "Radius 3 km" fact twice; deduplication collapses it.
func ExtractRadii(recommendations []string) []string {
	var facts []string

	for _, line := range recommendations {
		emitted := 0

		for _, m := range radiusRe.FindAllStringSubmatch(line, -1) {
			km := normalizeKM(m[2])
			if tipe := strings.ToLower(m[1]); tipe != "" {
				facts = append(facts, "Radius "+km+" km ("+tipe+")")
			} else {
				facts = append(facts, "Radius "+km+" km")
			}
			emitted++
		}

		for _, m := range withinRadiusRe.FindAllStringSubmatch(line, -1) {
			facts = append(facts, "Radius "+normalizeKM(m[1])+" km")
			emitted++
		}

		if emitted == 0 {
			continue
		}
		area := sectorAreaRe.FindStringSubmatch(line)
		if area == nil {
			continue
		}
		last := facts[len(facts)-1]
		if strings.Contains(last, "sektoral") && !strings.Contains(last, "area:") {
			facts[len(facts)-1] = last + " (area: " + strings.TrimSpace(area[1]) + ")"
		}
	}

	return dedupe(facts)
}

func normalizeKM(s string) string {
	return strings.ReplaceAll(s, ",", ".")
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
