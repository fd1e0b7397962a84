// Package domain models volcano activity reports published by MAGMA Indonesia
// (PVMBG, the Indonesian Center for Volcanology and Geological Hazard Mitigation).
//
// # Data Source
//
// MAGMA publishes a "Tingkat Aktivitas" (activity level) listing at
// https://magma.esdm.go.id/v1/gunung-api/tingkat-aktivitas. Each volcano row links
// to its latest detail report under /v1/gunung-api/laporan/<id>. The pages are
// server-rendered HTML with no stable markup contract, so every field here is
// extracted heuristically from flattened page text.
//
// # MAGMA Text Conventions
//
// Activity level:
//
//	"Level <roman> (<status>)"  →  e.g. "Level II (Waspada)"
//	Level I (Normal), Level II (Waspada), Level III (Siaga), Level IV (Awas).
//
// Report title:
//
//	The first line mentioning the volcano and the word "periode", e.g.
//	"Laporan Aktivitas Gunung Sinabung periode 00:00-06:00 WIB".
//
// Recommendations:
//
//	Free-text lines following the heading "Rekomendasi", up to the page footer
//	("Copyright ..."). Exclusion zones appear as prose:
//	  "... tidak boleh beraktivitas dalam radius 3 km dari puncak ..."
//	  "... radius sektoral 5 km untuk sektor selatan-timur ..."
//	Decimal separators may be commas ("2,5 km"); facts normalize them to dots.
//
// # Change Detection
//
// A report is considered new when its numeric report id or its level text
// differs from the last values acted upon. Empty parse results never count as a
// change and never overwrite known-good state. See [MonitoringState.Changed].
package domain
