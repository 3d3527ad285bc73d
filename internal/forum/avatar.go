package forum

import (
	"fmt"
	"net/url"
)

// DefaultAvatarBaseURL matches the external avatar service the web client
// renders from.
const DefaultAvatarBaseURL = "https://api.dicebear.com/7.x/avataaars/svg"

// AvatarURL derives the deterministic avatar for an author name. Purely
// cosmetic decoration; the same name always yields the same URL.
func AvatarURL(baseURL, name string) string {
	if baseURL == "" {
		baseURL = DefaultAvatarBaseURL
	}
	return fmt.Sprintf("%s?seed=%s", baseURL, url.QueryEscape(name))
}
