package service

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// gravatarURL derives the Gravatar image URL for an email address.
func gravatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=identicon", sum)
}
