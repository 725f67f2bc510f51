package compositor

import "strings"

var titleReplacer = strings.NewReplacer(
	"&", "and",
	"<", "",
	">", "",
	`"`, "",
	"'", "",
)

// SanitizeTitle prepares a caption for the banner: ampersands become "and",
// markup-significant characters are dropped, whitespace is collapsed and the
// result is upper-cased.
func SanitizeTitle(title string) string {
	cleaned := strings.Join(strings.Fields(titleReplacer.Replace(title)), " ")
	return strings.ToUpper(cleaned)
}
