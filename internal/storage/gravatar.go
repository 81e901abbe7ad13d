package storage

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// GravatarURL builds the Gravatar image URL for an email address. It is used
// as the default avatar at registration; `d=identicon` makes Gravatar serve a
// generated image for addresses without a profile.
func GravatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	hash := md5.Sum([]byte(normalized))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=identicon", hash)
}
