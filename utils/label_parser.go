package utils

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/swiftsale/label-annotator/dto"
)

// placeholderBuyer appears in place of a username on labels for buyers who had
// no account at purchase time; the real identity follows on a later line.
const placeholderBuyer = "new buyer!"

// identityMarkers locate the start of the buyer block on a label page.
// The "ships to:" variant never yields a first name.
var identityMarkers = []string{"ships to:", "pickup to:", "pickup address:"}

var (
	// Optional two-word name followed by a parenthesized username,
	// e.g. "Jane Doe (coolbuyer99)" or just "(coolbuyer99)".
	identityPattern = regexp.MustCompile(`([A-Za-z]+\s+[A-Za-z]+)?\s*\(([^)]+)\)`)

	// Any leading text followed by a parenthesized username; marks the
	// first line of the address block.
	addressStartPattern = regexp.MustCompile(`(.+?)\s*\(([^)]+)\)`)

	parenUsername   = regexp.MustCompile(`\([^)]+\)`)
	segmentSplitter = regexp.MustCompile(`[.,]`)
	subtotalPattern = regexp.MustCompile(`(?i)Subtotal:\s*\$([0-9]+\.[0-9]{2})`)
	bareUnitPattern = regexp.MustCompile(`(?i)^(ste|apt|unit|fl|#)?\s?\d+[a-zA-Z]?$`)

	unitKeywords = []string{"ste", "apt", "unit", "fl", "bldg", "#"}
)

// NormalizeUsername trims and lowercases a username so it can be used as a
// join key against bin assignments.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// IsPickupPage reports whether a page carries a local-pickup marker.
// Checked before IsPackingSlip: a page carrying both markers is a pickup.
func IsPickupPage(pageText string) bool {
	lower := strings.ToLower(pageText)
	return strings.Contains(lower, "local pickup order") ||
		strings.Contains(lower, "pickup address:")
}

// IsPackingSlip reports whether a page carries the shipping packing-slip marker.
func IsPackingSlip(pageText string) bool {
	return strings.Contains(strings.ToLower(pageText), "packing slip")
}

// ExtractIdentity scans a page for the identity marker line and returns the
// buyer's normalized username and, for pickup labels only, their name.
// "(new buyer!)" placeholder lines are skipped in favor of the real identity
// on a following line. A zero Identity means the page is not identifiable.
func ExtractIdentity(pageText string) dto.Identity {
	lines := strings.Split(pageText, "\n")

	for idx, line := range lines {
		trimmed := strings.ToLower(strings.TrimSpace(line))
		marker := matchedMarker(trimmed)
		if marker == "" {
			continue
		}

		isPickup := marker != "ships to:"
		for _, next := range lines[idx+1:] {
			next = strings.TrimSpace(next)
			if next == "" {
				continue
			}
			m := identityPattern.FindStringSubmatch(next)
			if m == nil {
				continue
			}
			username := NormalizeUsername(m[2])
			if username == placeholderBuyer {
				continue
			}
			firstName := ""
			if isPickup {
				firstName = strings.TrimSpace(m[1])
			}
			return dto.Identity{Username: username, FirstName: firstName}
		}
		break
	}

	return dto.Identity{}
}

func matchedMarker(trimmedLower string) string {
	for _, marker := range identityMarkers {
		if strings.HasPrefix(trimmedLower, marker) {
			return marker
		}
	}
	return ""
}

// ParseAddressBlock extracts a structured mailing address from a label page.
// Labels wrap address fields across lines unpredictably, so everything from
// the "NAME (username)" line to the end of the page is joined into one blob
// and re-split on punctuation. Returns nil if fewer than 4 segments remain
// after the identity is stripped; a partial address is never emitted.
func ParseAddressBlock(pageText string) *dto.Address {
	var lines []string
	for _, line := range strings.Split(pageText, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	startIndex := -1
	var fullName, username string
	for i, line := range lines {
		if strings.Contains(strings.ToLower(line), "new buyer") {
			continue
		}
		m := addressStartPattern.FindStringSubmatch(line)
		if m != nil {
			fullName = strings.TrimSpace(m[1])
			username = strings.TrimSpace(m[2])
			startIndex = i
			break
		}
	}
	if startIndex < 0 || fullName == "" || username == "" {
		return nil
	}

	block := strings.Join(lines[startIndex:], " ")
	afterUsername := block
	if loc := parenUsername.FindStringIndex(block); loc != nil {
		afterUsername = strings.TrimSpace(block[loc[1]:])
	}

	var segments []string
	for _, seg := range segmentSplitter.Split(afterUsername, -1) {
		if seg = strings.TrimSpace(seg); seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) < 4 {
		return nil
	}

	var line1, line2, city, state, zip, country string
	if isAddressLine2(segments[1]) && len(segments) >= 6 {
		line1, line2, city, state, zip = segments[0], segments[1], segments[2], segments[3], segments[4]
		country = "US"
		if len(segments) > 5 {
			country = segments[5]
		}
	} else {
		line1, city, state, zip = segments[0], segments[1], segments[2], segments[3]
		country = "US"
		if len(segments) > 4 {
			country = segments[4]
		}
	}

	return &dto.Address{
		FullName:     TitleCase(fullName),
		Username:     strings.ToLower(username),
		AddressLine1: TitleCase(line1),
		AddressLine2: TitleCase(line2),
		City:         TitleCase(city),
		State:        strings.ToUpper(state),
		ZipCode:      zip,
		Country:      strings.ToUpper(country),
	}
}

// isAddressLine2 decides whether the second segment is a suite/unit line
// rather than the city: a known unit keyword prefix, a bare unit number, or a
// short fully-uppercase token.
func isAddressLine2(segment string) bool {
	lower := strings.ToLower(segment)
	for _, kw := range unitKeywords {
		if strings.HasPrefix(lower, kw) {
			return true
		}
	}
	if bareUnitPattern.MatchString(segment) {
		return true
	}
	return isAllUpper(segment) && len(strings.Fields(segment)) <= 3
}

func isAllUpper(s string) bool {
	return s == strings.ToUpper(s) && s != strings.ToLower(s)
}

// ExtractSubtotal sums all "Subtotal: $X.XX" amounts on a page. A page may
// carry several subtotal lines, and an order may span several pages; callers
// accumulate per-page sums into the order's running total.
func ExtractSubtotal(pageText string) float64 {
	var total float64
	for _, m := range subtotalPattern.FindAllStringSubmatch(pageText, -1) {
		if amount, err := strconv.ParseFloat(m[1], 64); err == nil {
			total += amount
		}
	}
	return total
}

// TitleCase renders a free-text address field in title case. A Caser carries
// internal transform state and is not safe for concurrent use, so one is
// built per call rather than shared across requests.
func TitleCase(s string) string {
	return cases.Title(language.AmericanEnglish).String(s)
}
