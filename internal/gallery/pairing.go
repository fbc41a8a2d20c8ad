package gallery

import "strings"

// MatchFiles pairs each PNG file with its like-named CSV companion.
//
// The expected CSV name is the PNG name with its extension stripped
// (case-insensitively) and ".csv" appended, looked up against a
// lowercased index of the CSV names. When two CSV names normalize to the
// same key the later one wins; that mirrors the behavior of the index
// build and is not a guarantee callers should lean on.
//
// MatchFiles is a pure function: identical inputs always produce
// identical output, in pngs order.
func MatchFiles(pngs, csvs []FileInfo) []FileMatch {
	csvIndex := make(map[string]FileInfo, len(csvs))
	for _, csv := range csvs {
		csvIndex[strings.ToLower(csv.Name)] = csv
	}

	matches := make([]FileMatch, 0, len(pngs))
	for _, png := range pngs {
		expected := companionName(png.Name)

		match := FileMatch{PNGFile: png}
		if csv, ok := csvIndex[strings.ToLower(expected)]; ok {
			match.CSVFile = &csv
			match.HasCSV = true
		}
		matches = append(matches, match)
	}

	return matches
}

// companionName derives the expected CSV filename for a PNG filename.
func companionName(pngName string) string {
	stem := pngName
	if n := len(stem) - len(".png"); n >= 0 && strings.EqualFold(stem[n:], ".png") {
		stem = stem[:n]
	}
	return stem + ".csv"
}
