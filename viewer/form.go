package viewer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"civictrack/models"
)

// DescriptionLimit is the soft length guide shown next to the description.
const DescriptionLimit = 300

// Form is the new-issue input.
type Form struct {
	Title       string
	Description string
	Category    models.IssueCategory
	// Address is the text in the address box; it doubles as the search input.
	Address string
}

// Complete reports whether every required field has content.
func (f Form) Complete() bool {
	return strings.TrimSpace(f.Title) != "" &&
		strings.TrimSpace(f.Description) != "" &&
		strings.TrimSpace(string(f.Category)) != ""
}

// CharCounter renders the description length against DescriptionLimit.
func (f Form) CharCounter() string {
	return fmt.Sprintf("%d / %d", utf8.RuneCountInString(f.Description), DescriptionLimit)
}
