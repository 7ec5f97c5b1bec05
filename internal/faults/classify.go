package faults

import "strings"

// rule is one row of the classification table. All tokens of at least one
// token group must appear (case-insensitively) in the raw text for the rule
// to match.
type rule struct {
	category Category
	groups   [][]string
}

// classifyTable is checked top to bottom; the first matching rule wins.
// Auth-like categories deliberately come before content categories so that
// fuzzy tokens like "invalid" resolve to the credential problem they almost
// always indicate. Keep the order stable unless evidence says otherwise.
var classifyTable = []rule{
	{Unauthorized, [][]string{{"401"}, {"unauthorized"}, {"invalid api key"}, {"api key not valid"}, {"invalid"}}},
	{Forbidden, [][]string{{"403"}, {"forbidden"}, {"permission"}}},
	{NotFound, [][]string{{"404"}, {"not found"}}},
	{Timeout, [][]string{{"timeout"}, {"timed out"}, {"deadline exceeded"}}},
	{FileAccess, [][]string{{"file", "not found"}, {"file", "cannot"}, {"no such file"}, {"permission denied", "file"}}},
	{MalformedResponse, [][]string{{"json"}, {"parse"}, {"malformed"}, {"extra data"}, {"unmarshal"}}},
	{UploadFailed, [][]string{{"upload"}, {"processing failed"}}},
	{QuotaExceeded, [][]string{{"quota"}, {"rate limit"}, {"limit"}, {"resource exhausted"}}},
}

// Classify maps raw failure text to a taxonomy category. Matching is
// case-insensitive substring containment; unrecognized text is Unknown.
func Classify(raw string) Category {
	text := strings.ToLower(raw)
	for _, r := range classifyTable {
		for _, group := range r.groups {
			all := true
			for _, token := range group {
				if !strings.Contains(text, token) {
					all = false
					break
				}
			}
			if all {
				return r.category
			}
		}
	}
	return Unknown
}

// ClassifyErr classifies err's text and wraps it in a Failure with the
// category's default fatality.
func ClassifyErr(title string, err error) *Failure {
	return New(Classify(err.Error()), title, err.Error())
}

// Remediation returns the category's fixed how-to-fix checklist.
func (c Category) Remediation() string {
	switch c {
	case NotFound:
		return `HOW TO FIX:
1. Check that your API key has access to the selected model
2. Try switching to a different model (e.g., gemini-2.5-flash)
3. Verify your API key is correct and active
4. Check Google AI Studio for model availability status`
	case Forbidden:
		return `HOW TO FIX:
1. Verify your API key has the necessary permissions
2. Check your Google Cloud project billing status
3. Ensure your API key hasn't been revoked
4. Try regenerating your API key from Google AI Studio`
	case Unauthorized:
		return `HOW TO FIX:
1. Check that your API key is correct (no extra spaces)
2. Verify the API key is from Google AI Studio (not Google Cloud)
3. Try pasting the API key again
4. Generate a new API key if needed`
	case Timeout:
		return `HOW TO FIX:
1. Check your internet connection
2. The video may be too large - try a shorter video
3. Wait a few minutes and try again
4. Check Google AI service status`
	case FileAccess:
		return `HOW TO FIX:
1. Verify the video file still exists at the original location
2. Check that you have read permissions for the file
3. Ensure the file isn't open in another program
4. Try selecting the file again`
	case MalformedResponse:
		return `HOW TO FIX:
1. This is usually a temporary AI response issue
2. Try running the analysis again
3. If it persists, try switching to a different model
4. The video assessment may need to be abandoned if this continues`
	case UploadFailed:
		return `HOW TO FIX:
1. Check that the video file is a valid format (MP4, MOV, AVI, MKV)
2. Ensure the video file isn't corrupted
3. Try converting the video to MP4 format
4. Check file size - very large files may timeout`
	case QuotaExceeded:
		return `HOW TO FIX:
1. You've reached your API usage limit
2. Wait a few minutes before trying again
3. Check your Google AI Studio quota limits
4. Consider upgrading your API tier if needed`
	default:
		return `HOW TO FIX:
1. Try running the analysis again
2. Check your internet connection
3. Verify your API key is valid
4. If the error persists, try restarting the application
5. Contact support if the problem continues`
	}
}
