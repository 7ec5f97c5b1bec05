// Package report renders an assessment result as a PDF placed next to the
// source video, and bundles a batch run's reports into a zstd-compressed ZIP.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var numberSuffixRe = regexp.MustCompile(`_(\d+)$`)

// TargetPath returns the PDF path for a video's report, in the video's
// directory. When the plain name is taken the next free numbered name is
// used: name.pdf → name_1.pdf → name_2.pdf; a stem that already ends in _N
// continues counting from N+1 instead of stacking suffixes.
func TargetPath(videoPath string) string {
	dir := filepath.Dir(videoPath)
	base := filepath.Base(videoPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	candidate := filepath.Join(dir, stem+".pdf")
	if _, err := os.Stat(candidate); err != nil {
		return candidate
	}

	counter := 1
	if m := numberSuffixRe.FindStringSubmatch(stem); m != nil {
		n, _ := strconv.Atoi(m[1])
		counter = n + 1
		stem = stem[:len(stem)-len(m[0])]
	}
	for {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d.pdf", stem, counter))
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
		counter++
	}
}
